package definition

import (
	"strings"

	"github.com/thoreinstein/pluginkit/internal/component"
	"github.com/thoreinstein/pluginkit/internal/validator"
	"github.com/thoreinstein/pluginkit/pkg/frontmatter"
)

// KnownColors are the display colors accepted for agents.
var KnownColors = []string{"red", "blue", "green", "yellow", "purple", "orange", "pink", "cyan"}

// inheritModel tells an agent to use the model of the calling session. It
// is a valid model value but never terminates a description, so it is not
// part of frontmatter.DefaultKnownModels.
const inheritModel = "inherit"

// Validator checks definitions for problems the parser cannot detect.
type Validator struct {
	strict bool
	models map[string]struct{}
	colors map[string]struct{}
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithStrict enables warnings for missing optional fields.
func WithStrict(strict bool) ValidatorOption {
	return func(v *Validator) {
		v.strict = strict
	}
}

// WithModels replaces the accepted model values.
func WithModels(models ...string) ValidatorOption {
	return func(v *Validator) {
		v.models = toSet(models)
	}
}

// NewValidator creates a Validator accepting frontmatter.DefaultKnownModels
// and KnownColors.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		models: toSet(frontmatter.DefaultKnownModels),
		colors: toSet(KnownColors),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks d and returns every issue found.
func (v *Validator) Validate(d *Definition) *validator.Result {
	result := &validator.Result{Path: d.Path}

	v.validateName(d, result)
	v.validateDescription(d, result)
	v.validateModel(d, result)
	v.validateTools(d, result)
	v.validateColor(d, result)
	v.validateInstructions(d, result)

	for i := range result.Issues {
		result.Issues[i].Context = map[string]string{"kind": string(d.Kind)}
	}
	return result
}

func (v *Validator) validateName(d *Definition, result *validator.Result) {
	if d.Name == "" {
		result.AddError("name", "name is required", nil)
		return
	}
	if err := component.ValidateName(d.Name); err != nil {
		result.AddError("name", err.Error(), nil)
	}
}

// validateDescription warns about a missing description in strict mode.
func (v *Validator) validateDescription(d *Definition, result *validator.Result) {
	if v.strict && strings.TrimSpace(d.Description) == "" {
		result.AddWarning("description", "description is recommended for discoverability", nil)
	}
}

func (v *Validator) validateModel(d *Definition, result *validator.Result) {
	if d.Model == "" || d.Model == inheritModel {
		return
	}
	if _, ok := v.models[d.Model]; !ok {
		result.AddWarning("model", "unknown model", d.Model)
	}
}

func (v *Validator) validateTools(d *Definition, result *validator.Result) {
	if _, err := d.Permissions(); err != nil {
		result.AddError("allowed_tools", err.Error(), nil)
	}
}

func (v *Validator) validateColor(d *Definition, result *validator.Result) {
	if d.Color == "" {
		return
	}
	if _, ok := v.colors[strings.ToLower(d.Color)]; !ok {
		result.AddWarning("color", "unknown color", d.Color)
	}
	if d.Kind != component.KindAgent {
		result.AddInfo("color", "color only applies to agents", nil)
	}
}

func (v *Validator) validateInstructions(d *Definition, result *validator.Result) {
	if strings.TrimSpace(d.Instructions) != "" {
		return
	}
	switch d.Kind {
	case component.KindCommand:
		result.AddError("instructions", "command has no body content", nil)
	default:
		if v.strict {
			result.AddWarning("instructions", string(d.Kind)+" has no body content", nil)
		}
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
