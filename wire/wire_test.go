package wire

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"testing"
)

func TestDecodeRequest(t *testing.T) {
	t.Run("should decode a login request", func(t *testing.T) {
		data := []byte(`{"header": {"Content-Type": "application/json", "Encoding": "utf-8"},` +
			`"request": {"command": "login_request", "username": "inspector", "password": "Str0ngPass"}}`)

		got, err := DecodeRequest(data)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		want := &LoginRequest{Username: "inspector", Password: "Str0ngPass"}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
		}
	})

	t.Run("should reject an unrecognized command", func(t *testing.T) {
		data := []byte(`{"header": {}, "request": {"command": "drop_all_tables"}}`)

		_, err := DecodeRequest(data)
		var unknownErr *UnknownCommandError
		if !errors.As(err, &unknownErr) {
			t.Fatalf("\nwanted:\n*UnknownCommandError\ngot:\n%v", err)
		}
		if unknownErr.Command != "drop_all_tables" {
			t.Fatalf("\nwanted:\ndrop_all_tables\ngot:\n%s", unknownErr.Command)
		}
	})

	t.Run("should reject a request with no command", func(t *testing.T) {
		data := []byte(`{"header": {}, "request": {"username": "inspector"}}`)

		_, err := DecodeRequest(data)
		var unknownErr *UnknownCommandError
		if !errors.As(err, &unknownErr) {
			t.Fatalf("\nwanted:\n*UnknownCommandError\ngot:\n%v", err)
		}
	})

	t.Run("should reject malformed JSON", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"header": {`))
		if err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
		var unknownErr *UnknownCommandError
		if errors.As(err, &unknownErr) {
			t.Fatalf("\nwanted:\nplain decode error\ngot:\n%v", err)
		}
	})
}

func TestEncodeRequest(t *testing.T) {
	t.Run("should round trip every command", func(t *testing.T) {
		requests := []Request{
			&LoginRequest{Username: "inspector", Password: "Str0ngPass"},
			&RegisterUserRequest{Username: "clerk", Password: "An0therPass"},
			&SaveNewUserRequest{NationalID: "38001010001", FirstName: "Mari", LastName: "Tamm",
				DateOfBirth: "1980-01-01", Gender: "Female", AddressCountry: "Estonia",
				AddressCity: "Tallinn", MaritalStatus: "Single"},
			&FindUserRequest{LastName: "Tamm", DateOfBirth: "01.01.1980"},
			&RetrieveUserDetailsRequest{NationalID: "38001010001"},
		}

		for _, want := range requests {
			data, err := EncodeRequest(want)
			if err != nil {
				t.Fatalf("encoding %s: %v", want.Command(), err)
			}

			got, err := DecodeRequest(data)
			if err != nil {
				t.Fatalf("decoding %s: %v", want.Command(), err)
			}
			if !reflect.DeepEqual(want, got) {
				t.Fatalf("\nwanted:\n%+v\ngot:\n%+v", want, got)
			}
		}
	})

	t.Run("should carry the default header", func(t *testing.T) {
		data, err := EncodeRequest(&LoginRequest{Username: "a", Password: "b"})
		if err != nil {
			t.Fatalf("encoding: %v", err)
		}

		var env struct {
			Header Header `json:"header"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("unmarshalling envelope: %v", err)
		}
		if env.Header.ContentType != "application/json" || env.Header.Encoding != "utf-8" {
			t.Fatalf("\nwanted:\napplication/json, utf-8\ngot:\n%+v", env.Header)
		}
	})
}

// chunkedReader yields at most chunk bytes per Read call, forcing the framing
// code to observe arbitrary read boundaries.
type chunkedReader struct {
	data  []byte
	chunk int
	pos   int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(p) {
		n = len(p)
	}
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

func TestReadMessage(t *testing.T) {
	t.Run("should decode identically for every read boundary", func(t *testing.T) {
		payload := []byte(`{"header": {}, "request": {"command": "retrieve_user_details", "national_id": "123"}}`)
		framed := append(append([]byte{}, payload...), Delimiter...)

		for chunk := 1; chunk <= len(framed); chunk++ {
			r := bufio.NewReaderSize(&chunkedReader{data: framed, chunk: chunk}, 16)
			got, err := ReadMessage(r)
			if err != nil {
				t.Fatalf("chunk size %d: %v", chunk, err)
			}
			if !bytes.Equal(payload, got) {
				t.Fatalf("chunk size %d:\nwanted:\n%s\ngot:\n%s", chunk, payload, got)
			}
		}
	})

	t.Run("should keep reading when the delimiter spans reads", func(t *testing.T) {
		// A chunk size of 1 guarantees \r and \n arrive in separate reads.
		payload := []byte(`{"request": {"command": "find_user"}}`)
		framed := append(append([]byte{}, payload...), Delimiter...)

		r := bufio.NewReaderSize(&chunkedReader{data: framed, chunk: 1}, 16)
		got, err := ReadMessage(r)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if !bytes.Equal(payload, got) {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", payload, got)
		}
	})

	t.Run("should not stop at a bare newline", func(t *testing.T) {
		framed := []byte("first\nsecond\r\n")

		r := bufio.NewReader(bytes.NewReader(framed))
		got, err := ReadMessage(r)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if string(got) != "first\nsecond" {
			t.Fatalf("\nwanted:\nfirst\nsecond\ngot:\n%s", got)
		}
	})

	t.Run("should report EOF mid-message", func(t *testing.T) {
		r := bufio.NewReader(bytes.NewReader([]byte("no delimiter here")))
		_, err := ReadMessage(r)
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", io.ErrUnexpectedEOF, err)
		}
	})

	t.Run("should return io.EOF for an empty stream", func(t *testing.T) {
		r := bufio.NewReader(bytes.NewReader(nil))
		_, err := ReadMessage(r)
		if !errors.Is(err, io.EOF) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", io.EOF, err)
		}
	})
}

func TestWriteMessage(t *testing.T) {
	t.Run("should append the delimiter", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteMessage(&buf, []byte("payload")); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if buf.String() != "payload\r\n" {
			t.Fatalf("\nwanted:\npayload\\r\\n\ngot:\n%q", buf.String())
		}
	})
}
