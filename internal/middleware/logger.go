package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type responseData struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	data *responseData
}

func (l *loggingResponseWriter) Write(b []byte) (int, error) {
	if l.data.status == 0 {
		l.data.status = http.StatusOK
	}
	size, err := l.ResponseWriter.Write(b)
	l.data.size += size
	return size, err
}

func (l *loggingResponseWriter) WriteHeader(statusCode int) {
	if l.data.status == 0 {
		l.data.status = statusCode
	}
	l.ResponseWriter.WriteHeader(statusCode)
}

// Logger записывает в журнал метод, путь, статус, размер и длительность
// обработки каждого запроса.
func Logger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			data := &responseData{}
			next.ServeHTTP(&loggingResponseWriter{ResponseWriter: w, data: data}, r)

			if data.status == 0 {
				data.status = http.StatusOK
			}
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", data.status),
				zap.Int("size", data.size),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
