package router

import (
	"github.com/indigo-web/wire/http"
	"github.com/indigo-web/wire/http/method"
	"github.com/indigo-web/wire/http/status"
)

func newErrorHandlers() map[status.Code]Handler {
	return map[status.Code]Handler{
		AllErrors:               genericErrorHandler,
		status.MethodNotAllowed: generic405Handler,
	}
}

func genericErrorHandler(request *http.Request) *http.Response {
	return http.Error(request, request.Env.Error)
}

func generic405Handler(request *http.Request) *http.Response {
	resp := request.Respond().Header("Allow", request.Env.AllowedMethods)

	if request.Method != method.OPTIONS {
		resp.Error(request.Env.Error)
	}

	return resp
}
