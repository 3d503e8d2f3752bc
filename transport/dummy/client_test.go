package dummy

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, client *Client, n int) (pieces []string) {
	for range n {
		data, err := client.Read()
		require.NoError(t, err)
		pieces = append(pieces, string(data))
	}

	return pieces
}

func TestClient(t *testing.T) {
	t.Run("pieces then EOF", func(t *testing.T) {
		client := NewClient([]byte("Hello"), []byte("world!"))
		require.Equal(t, []string{"Hello", "world!"}, readAll(t, client, 2))

		_, err := client.Read()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("loop", func(t *testing.T) {
		client := NewClient([]byte("a"), []byte("b")).LoopReads()
		require.Equal(t, []string{"a", "b", "a", "b", "a"}, readAll(t, client, 5))
	})

	t.Run("loop over nothing", func(t *testing.T) {
		_, err := NewNopClient().LoopReads().Read()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("pushback", func(t *testing.T) {
		client := NewClient([]byte("Hello"), []byte("world"))
		data, err := client.Read()
		require.NoError(t, err)

		client.Pushback(data[2:])
		require.Equal(t, []string{"llo", "world"}, readAll(t, client, 2))
	})

	t.Run("journal", func(t *testing.T) {
		client := NewNopClient()
		for _, piece := range []string{"Hello", ", ", "world!"} {
			_, err := client.Write([]byte(piece))
			require.NoError(t, err)
		}

		require.Equal(t, "Hello, world!", client.Written())
	})

	t.Run("closed", func(t *testing.T) {
		client := NewClient([]byte("unread"))
		require.NoError(t, client.Close())
		require.True(t, client.Closed())

		_, err := client.Write([]byte("late"))
		require.ErrorIs(t, err, net.ErrClosed)
		_, err = client.Read()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("nop conn", func(t *testing.T) {
		client := NewNopClient()
		client.Conn().(*Conn).Nop()

		_, err := client.Write([]byte("discarded"))
		require.NoError(t, err)
		require.Empty(t, client.Written())
	})
}
