package ranges

import (
	"io"
	"strconv"
	"strings"

	"github.com/dchest/uniuri"

	"github.com/indigo-web/wire/config"
	"github.com/indigo-web/wire/http/mime"
	"github.com/indigo-web/wire/http/status"
)

type Kind uint8

const (
	Full Kind = iota
	Single
	Multipart
)

// Part is a single byterange of a multipart body along with its header block, starting
// with the boundary delimiter.
type Part struct {
	Spec
	Header string
}

// Len returns the number of bytes the part takes on the wire: its header block, the data and
// the trailing CRLF.
func (p Part) Len() int64 {
	return int64(len(p.Header)) + p.Spec.Len() + int64(len(crlf))
}

// Plan describes the response to a request for a resource of known size. For multipart
// plans, every part header is rendered beforehand, so the ContentLength is exact before
// any of the body is written.
type Plan struct {
	Kind          Kind
	Status        status.Code
	Size          int64
	Ranges        []Spec
	Boundary      string
	Parts         []Part
	ContentLength int64
}

const crlf = "\r\n"

// FullPlan returns the plan of the whole resource.
func FullPlan(size int64) Plan {
	return Plan{
		Kind:          Full,
		Status:        status.OK,
		Size:          size,
		Ranges:        []Spec{{Begin: 0, End: size - 1}},
		ContentLength: size,
	}
}

// NewPlan parses the Range header value and plans the response. The partType is the
// Content-Type of each part of a multipart body. On error, zero Plan is returned.
func NewPlan(rangeHeader string, size int64, partType mime.MIME, cfg config.Ranges) (Plan, error) {
	specs, err := Parse(rangeHeader, size, cfg.MaxParts)
	if err != nil {
		return Plan{}, err
	}

	return PlanFor(specs, size, partType, uniuri.NewLen(cfg.BoundaryLength)), nil
}

// PlanFor plans the response for already validated ranges. A single range is served as is,
// otherwise a multipart body delimited with the boundary is planned.
func PlanFor(specs []Spec, size int64, partType mime.MIME, boundary string) Plan {
	if len(specs) == 1 {
		return Plan{
			Kind:          Single,
			Status:        status.PartialContent,
			Size:          size,
			Ranges:        specs,
			ContentLength: specs[0].Len(),
		}
	}

	plan := Plan{
		Kind:     Multipart,
		Status:   status.PartialContent,
		Size:     size,
		Ranges:   specs,
		Boundary: boundary,
		Parts:    make([]Part, len(specs)),
	}

	for i, spec := range specs {
		plan.Parts[i] = Part{
			Spec:   spec,
			Header: partHeader(boundary, partType, spec, size),
		}
		plan.ContentLength += plan.Parts[i].Len()
	}

	plan.ContentLength += int64(len(plan.closing()))

	return plan
}

func partHeader(boundary string, partType mime.MIME, spec Spec, size int64) string {
	var b strings.Builder
	b.WriteString("--")
	b.WriteString(boundary)
	b.WriteString(crlf)
	b.WriteString("Content-Type: ")
	b.WriteString(partType)
	b.WriteString(crlf)
	b.WriteString("Content-Range: ")
	b.WriteString(ContentRange(spec, size))
	b.WriteString(crlf)
	b.WriteString(crlf)

	return b.String()
}

func (p Plan) closing() string {
	return "--" + p.Boundary + "--" + crlf
}

// ContentType returns the Content-Type of the whole response. For non-multipart plans the
// resource's own type is returned.
func (p Plan) ContentType(resourceType mime.MIME) string {
	if p.Kind != Multipart {
		return resourceType
	}

	return mime.ByteRanges + "; boundary=" + p.Boundary
}

// Reader returns the response body, reading the resource from src.
func (p Plan) Reader(src io.ReaderAt) io.Reader {
	switch p.Kind {
	case Full:
		return io.NewSectionReader(src, 0, p.Size)
	case Single:
		return io.NewSectionReader(src, p.Ranges[0].Begin, p.Ranges[0].Len())
	}

	readers := make([]io.Reader, 0, len(p.Parts)*3+1)
	for _, part := range p.Parts {
		readers = append(readers,
			strings.NewReader(part.Header),
			io.NewSectionReader(src, part.Begin, part.Spec.Len()),
			strings.NewReader(crlf),
		)
	}

	return io.MultiReader(append(readers, strings.NewReader(p.closing()))...)
}

// CopyTo writes the response body, read from the resource, into w.
func (p Plan) CopyTo(w io.Writer, src io.ReaderAt) (int64, error) {
	return io.Copy(w, p.Reader(src))
}

// ContentRange renders the Content-Range header value of the range.
func ContentRange(spec Spec, size int64) string {
	buff := make([]byte, 0, len("bytes ")+3*20)
	buff = append(buff, "bytes "...)
	buff = strconv.AppendInt(buff, spec.Begin, 10)
	buff = append(buff, '-')
	buff = strconv.AppendInt(buff, spec.End, 10)
	buff = append(buff, '/')
	buff = strconv.AppendInt(buff, size, 10)

	return string(buff)
}

// Unsatisfied renders the Content-Range header value of a 416 response.
func Unsatisfied(size int64) string {
	return "bytes */" + strconv.FormatInt(size, 10)
}
