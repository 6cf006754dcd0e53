package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fulldump/box"

	"github.com/nvdnkpr/hr/service"
)

const ContextServicerKey = "2f9c5f0a-7e23-4a5d-9d3b-6a1f25b4e7c1"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer)
}

func AccessLog(l *log.Logger) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			r := box.GetRequest(ctx)
			now := time.Now()
			defer func() {
				l.Println(now.UTC().Format(time.RFC3339Nano), formatRemoteAddr(r), r.Method, r.URL.String(), time.Since(now))
			}()

			next(ctx)
		}
	}
}

func formatRemoteAddr(r *http.Request) string {
	xorigin := strings.TrimSpace(strings.Split(
		r.Header.Get("X-Forwarded-For"), ",")[0])
	if xorigin != "" {
		return xorigin
	}

	return r.RemoteAddr[0:strings.LastIndex(r.RemoteAddr, ":")]
}

func RecoverFromPanic(next box.H) box.H {
	return func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				debug.PrintStack()
				box.SetError(ctx, fmt.Errorf("internal panic: %v", r))
			}
		}()
		next(ctx)
	}
}

type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)

		if err == service.ErrorFeedNotFound {
			writeError(w, http.StatusNotFound, err.Error(), "the feed does not exist, create it first")
			return
		}

		if err == service.ErrorFeedAlreadyExists {
			writeError(w, http.StatusConflict, err.Error(), "a feed with that name already exists")
			return
		}

		if _, ok := err.(*json.SyntaxError); ok {
			writeError(w, http.StatusBadRequest, err.Error(), "Malformed JSON")
			return
		}

		writeError(w, http.StatusInternalServerError, err.Error(), "Unexpected error")
	}
}

func writeError(w http.ResponseWriter, status int, message, description string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": PrettyError{
			Message:     message,
			Description: description,
		},
	})
}
