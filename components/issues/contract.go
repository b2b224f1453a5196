package issues

import (
	"context"
	"embed"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed contract/openapi.yaml
var contractFS embed.FS

// formRules is the validation surface derived from one operation's
// form-encoded request body.
type formRules struct {
	required []string
	fields   map[string]fieldRule
}

type fieldRule struct {
	enum   []string
	maxLen int
}

// contract holds the validation rules for the component's write operations,
// keyed by operationId in the embedded OpenAPI document.
type contract struct {
	create formRules
	update formRules
}

// loadContract parses and validates the embedded OpenAPI document, then
// extracts form validation rules for the createIssue and updateIssue
// operations.
func loadContract(ctx context.Context) (*contract, error) {
	raw, err := contractFS.ReadFile("contract/openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("issues: read embedded contract: %w", err)
	}

	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("issues: parse contract: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("issues: validate contract: %w", err)
	}

	c := &contract{}
	for _, item := range doc.Paths.Map() {
		if item == nil || item.Post == nil {
			continue
		}
		rules, err := rulesFromOperation(item.Post)
		if err != nil {
			return nil, err
		}
		switch item.Post.OperationID {
		case "createIssue":
			c.create = rules
		case "updateIssue":
			c.update = rules
		}
	}
	if c.create.fields == nil {
		return nil, fmt.Errorf("issues: contract is missing the createIssue operation")
	}
	if c.update.fields == nil {
		return nil, fmt.Errorf("issues: contract is missing the updateIssue operation")
	}
	return c, nil
}

func rulesFromOperation(op *openapi3.Operation) (formRules, error) {
	rules := formRules{fields: map[string]fieldRule{}}
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return rules, nil
	}
	media, ok := op.RequestBody.Value.Content["application/x-www-form-urlencoded"]
	if !ok || media.Schema == nil || media.Schema.Value == nil {
		return rules, fmt.Errorf("issues: operation %s has no form-encoded request body", op.OperationID)
	}

	schema := media.Schema.Value
	rules.required = append(rules.required, schema.Required...)
	for name, prop := range schema.Properties {
		if prop == nil || prop.Value == nil {
			continue
		}
		rule := fieldRule{}
		for _, raw := range prop.Value.Enum {
			if s, ok := raw.(string); ok {
				rule.enum = append(rule.enum, s)
			}
		}
		if prop.Value.MaxLength != nil {
			rule.maxLen = int(*prop.Value.MaxLength)
		}
		rules.fields[name] = rule
	}
	return rules, nil
}

// validate checks a submitted form against the rules and returns a
// ValidationError naming the first offending field, or nil.
func (r formRules) validate(form url.Values) error {
	for _, field := range r.required {
		if strings.TrimSpace(form.Get(field)) == "" {
			return ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s: This field is required.", fieldLabel(field)),
			}
		}
	}

	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := form.Get(name)
		if value == "" {
			continue
		}
		rule := r.fields[name]
		if len(rule.enum) > 0 && !contains(rule.enum, value) {
			return ValidationError{
				Field:   name,
				Message: fmt.Sprintf("%s: Select a valid choice. %s is not one of the available choices.", fieldLabel(name), value),
			}
		}
		if rule.maxLen > 0 {
			if count := utf8.RuneCountInString(value); count > rule.maxLen {
				return ValidationError{
					Field:   name,
					Message: fmt.Sprintf("%s: Ensure this value has at most %d characters (it has %d).", fieldLabel(name), rule.maxLen, count),
				}
			}
		}
	}
	return nil
}

// statusChoices returns the status enum declared for the create operation.
func (c *contract) statusChoices() []string {
	rule, ok := c.create.fields["status"]
	if !ok {
		return nil
	}
	return append([]string{}, rule.enum...)
}

func fieldLabel(field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	if label == "" {
		return field
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
