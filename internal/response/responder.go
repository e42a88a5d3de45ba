package response

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"log/slog"
	"net/http"
	"runtime"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Responder renders API answers. In DebugMode internal error messages are sent to
// the client, otherwise only an error id which can be found in the logs.
type Responder struct {
	DebugMode bool
}

type errorBody struct {
	Error   string `json:"error"`
	ErrorId string `json:"error_id,omitempty"`
}

// RespondAndLogError responds with 500 and logs err at error level.
func (rr *Responder) RespondAndLogError(w http.ResponseWriter, ctx context.Context, err error) {
	errId := uuid.NewString()
	log(ctx, slog.LevelError, err.Error(), slog.String("err_id", errId))

	body := errorBody{ErrorId: errId}
	if rr.DebugMode {
		body.Error = capitalize(err.Error())
	} else {
		body.Error = "Unknown error occurred while processing your request. Error ID: " + errId
	}

	rr.send(w, ctx, http.StatusInternalServerError, body)
}

// RespondBadRequest tells the client what is wrong with its request, the message is never hidden.
func (rr *Responder) RespondBadRequest(w http.ResponseWriter, ctx context.Context, err error) {
	log(ctx, slog.LevelInfo, "bad request: "+err.Error())
	rr.send(w, ctx, http.StatusBadRequest, errorBody{Error: capitalize(err.Error())})
}

func (rr *Responder) SendJson(w http.ResponseWriter, ctx context.Context, data any) {
	rr.send(w, ctx, http.StatusOK, data)
}

// SendXml writes data with the XML declaration, contentType is set as given.
func (rr *Responder) SendXml(w http.ResponseWriter, ctx context.Context, contentType string, data any) {
	bs, err := xml.MarshalIndent(data, "", "  ")
	if err != nil {
		rr.RespondAndLogError(w, ctx, err)
		return
	}

	write(w, contentType, http.StatusOK, append([]byte(xml.Header), bs...))
}

func (rr *Responder) send(w http.ResponseWriter, ctx context.Context, status int, data any) {
	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(data); err != nil {
		log(ctx, slog.LevelError, "cannot marshal response body: "+err.Error())
		w.Header().Set("X-Content-Type-Options", "nosniff")
		write(w, "text/plain; charset=utf-8", http.StatusInternalServerError, []byte("unknown error"))
		return
	}

	if status >= http.StatusBadRequest {
		w.Header().Set("X-Content-Type-Options", "nosniff")
	}
	write(w, "application/json; charset=utf-8", status, buf.Bytes())
}

func write(w http.ResponseWriter, contentType string, status int, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Reports the caller of the exported Respond* method as the log source
func log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	l := slog.Default()

	if !l.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	// skip [runtime.Callers, this function, the Respond* method]
	runtime.Callers(3, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
