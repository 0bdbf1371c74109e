package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestBody bounds an inflated request body.
const MaxRequestBody = 1 << 20

// DecompressRequest inflates gzip encoded bodies, reading at most limit
// bytes of decompressed data. Other encodings are refused with 415.
func DecompressRequest(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Encoding"))) {
		case "", "identity":
			c.Next()
			return
		case "gzip", "x-gzip":
		default:
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported content encoding"})
			return
		}

		original := c.Request.Body
		reader, err := gzip.NewReader(original)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed gzip body"})
			return
		}
		defer original.Close()

		c.Request.Body = http.MaxBytesReader(c.Writer, reader, limit)
		c.Request.ContentLength = -1
		c.Request.Header.Del("Content-Encoding")
		c.Next()
	}
}
