// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ManuGH/skillgate/internal/log"
)

var dumpSeparator = strings.Repeat("=", 50)

// ResponseDump logs the JSON body returned on the given paths at debug
// level, pretty printed between separator lines. A body that is not valid
// JSON is logged as an error together with the raw bytes. The response sent
// to the client is never altered.
func ResponseDump(paths ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithComponentFromContext(r.Context(), "response-dump")
			if !slices.Contains(paths, r.URL.Path) || !debugEnabled(logger) {
				next.ServeHTTP(w, r)
				return
			}

			rec := &teeWriter{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			DumpJSON(logger, rec.body.Bytes())
		})
	}
}

// DumpJSON writes body to logger as indented JSON framed by separators.
func DumpJSON(logger zerolog.Logger, body []byte) {
	if len(bytes.TrimSpace(body)) == 0 {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "response.dump_invalid").
			Str("raw", string(body)).
			Msg("response is not valid JSON")
		return
	}
	logger.Debug().
		Str(log.FieldEvent, "response.dump").
		Msg("\n" + dumpSeparator + "\n" + pretty.String() + "\n" + dumpSeparator)
}

func debugEnabled(l zerolog.Logger) bool {
	return l.GetLevel() <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel
}

type teeWriter struct {
	http.ResponseWriter
	body bytes.Buffer
}

func (t *teeWriter) Write(b []byte) (int, error) {
	t.body.Write(b)
	return t.ResponseWriter.Write(b)
}
