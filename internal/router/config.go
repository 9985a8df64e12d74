package router

import (
	"os"
	"strings"
)

type Config struct {
	Addr string
	// APIPrefix is prepended to every route, e.g. /api.
	APIPrefix string
	// FileRoot is served read-only under <APIPrefix>/files/.
	FileRoot    string
	CORSOrigins []string
}

// ConfigFromEnv reads HTTP_ADDR, API_PREFIX, FILE_STORAGE_PATH and CORS_ALLOWED_ORIGINS.
func ConfigFromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8066"
	}
	prefix, ok := os.LookupEnv("API_PREFIX")
	if !ok {
		prefix = "/api"
	}
	root := os.Getenv("FILE_STORAGE_PATH")
	if root == "" {
		root = "uploads"
	}
	origins := []string{"*"}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins = origins[:0]
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return Config{Addr: addr, APIPrefix: normalizePrefix(prefix), FileRoot: root, CORSOrigins: origins}
}

// normalizePrefix yields "" or a path with a leading and no trailing slash.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
