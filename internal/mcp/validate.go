package mcp

import (
	"net/url"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
	"github.com/thoreinstein/pluginkit/internal/validator"
)

// Field length limits.
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 500
)

// ErrInvalidCommandType indicates a command type other than npx, bunx, uvx
// or http.
var ErrInvalidCommandType = errors.New("invalid command type")

var envKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks s and returns every issue found.
func Validate(s *Server) *validator.Result {
	result := &validator.Result{}

	validateLength(result, "name", s.Name, MaxNameLength)
	validateLength(result, "description", s.Description, MaxDescriptionLength)

	switch s.CommandType {
	case CommandNPX, CommandBunx, CommandUVX:
		if s.Package == "" {
			result.AddError("package", string(s.CommandType)+" servers require a package", nil)
		}
		if s.URL != "" {
			result.AddWarning("url", "url is ignored for "+string(s.CommandType)+" servers", nil)
		}
	case CommandHTTP:
		validateURL(result, s.URL)
		if s.Package != "" {
			result.AddWarning("package", "package is ignored for http servers", nil)
		}
		if len(s.Args) > 0 {
			result.AddWarning("args", "args are ignored for http servers", nil)
		}
	default:
		result.AddError("command_type", "command_type must be one of npx, bunx, uvx, http", string(s.CommandType))
	}

	for key := range s.EnvVars {
		if !envKeyPattern.MatchString(key) {
			result.AddError("env_vars", "invalid environment variable name", key)
		}
	}

	for i := range result.Issues {
		result.Issues[i].Context = map[string]string{"server": s.Name}
	}
	return result
}

func validateLength(result *validator.Result, field, value string, maxLen int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		result.AddError(field, field+" is required", nil)
	case n > maxLen:
		result.AddError(field, field+" must be at most "+strconv.Itoa(maxLen)+" characters", n)
	}
}

func validateURL(result *validator.Result, raw string) {
	if raw == "" {
		result.AddError("url", "http servers require a url", nil)
		return
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		result.AddError("url", "url must be an absolute http or https URL", logging.MaskURL(raw))
	}
}
