package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

var compressibleTypes = []string{"application/json", "text/html", "text/plain"}

type gzipWriter struct {
	http.ResponseWriter
	zw          *gzip.Writer
	compressing bool
	wroteHeader bool
}

func (g *gzipWriter) WriteHeader(statusCode int) {
	if g.wroteHeader {
		return
	}
	g.wroteHeader = true

	if statusCode < 300 && compressible(g.Header().Get("Content-Type")) {
		g.compressing = true
		g.Header().Set("Content-Encoding", "gzip")
		g.Header().Del("Content-Length")
	}
	g.ResponseWriter.WriteHeader(statusCode)
}

func (g *gzipWriter) Write(b []byte) (int, error) {
	if !g.wroteHeader {
		g.WriteHeader(http.StatusOK)
	}
	if !g.compressing {
		return g.ResponseWriter.Write(b)
	}
	if g.zw == nil {
		g.zw = gzip.NewWriter(g.ResponseWriter)
	}
	return g.zw.Write(b)
}

func (g *gzipWriter) Close() error {
	if g.zw == nil {
		return nil
	}
	return g.zw.Close()
}

func compressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

type gzipReader struct {
	io.ReadCloser
	zr *gzip.Reader
}

func (g *gzipReader) Read(p []byte) (int, error) {
	return g.zr.Read(p)
}

func (g *gzipReader) Close() error {
	if err := g.ReadCloser.Close(); err != nil {
		return err
	}
	return g.zr.Close()
}

// GzipMiddleware распаковывает тела запросов с Content-Encoding: gzip и сжимает
// ответы JSON и текстовых типов, если клиент принимает gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			zr, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
				return
			}
			r.Body = &gzipReader{ReadCloser: r.Body, zr: zr}
			r.Header.Del("Content-Encoding")
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gw := &gzipWriter{ResponseWriter: w}
		defer gw.Close()

		next.ServeHTTP(gw, r)
	})
}
