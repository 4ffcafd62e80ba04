// Package validation turns raw task batches into domain tasks. It checks
// every entry against an embedded JSON schema and fills in the defaults for
// absent fields.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/priority"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/tasks.schema.json
var batchSchemaJSON []byte

var (
	printer     = message.NewPrinter(language.English)
	batchSchema = mustCompileSchema(batchSchemaJSON, "tasks.schema.json")
)

func mustCompileSchema(raw []byte, name string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// FieldError is one problem found in a batch. Path is a JSON pointer into
// the submitted document, e.g. "/2/importance".
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError collects every problem found in a batch.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "invalid task batch"
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Path + ": " + fe.Message
	}
	return "invalid task batch: " + strings.Join(parts, "; ")
}

func invalid(path, format string, args ...any) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Path: path, Message: fmt.Sprintf(format, args...)}}}
}

// Decoder validates batches and applies defaults.
type Decoder struct {
	defaultDueDays int
	maxBatchSize   int
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithDefaultDueDays sets how many days after today an absent due date
// falls.
func WithDefaultDueDays(days int) Option {
	return func(d *Decoder) {
		d.defaultDueDays = days
	}
}

// WithMaxBatchSize rejects batches longer than n. Zero means no limit.
func WithMaxBatchSize(n int) Option {
	return func(d *Decoder) {
		d.maxBatchSize = n
	}
}

// NewDecoder creates a decoder with the standard defaults.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{defaultDueDays: priority.DefaultDueDays}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeBatch validates a JSON batch with the standard defaults.
func DecodeBatch(data []byte, today time.Time) ([]priority.Task, error) {
	return NewDecoder().Decode(data, today)
}

// Decode validates a JSON array of task objects and returns the tasks with
// defaults applied. today anchors the default due date. A *ValidationError
// is returned for any schema violation.
func (d *Decoder) Decode(data []byte, today time.Time) ([]priority.Task, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, invalid("/", "malformed JSON: %v", err)
	}

	if items, ok := doc.([]any); ok && d.maxBatchSize > 0 && len(items) > d.maxBatchSize {
		return nil, invalid("/", "batch has %d tasks, the limit is %d", len(items), d.maxBatchSize)
	}

	if err := batchSchema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}

	items := doc.([]any)
	defaultDue := priority.DateOf(today).AddDays(d.defaultDueDays)

	tasks := make([]priority.Task, 0, len(items))
	var problems []FieldError
	for i, item := range items {
		task, fieldErrs := decodeTask(item.(map[string]any), "/"+strconv.Itoa(i), defaultDue)
		problems = append(problems, fieldErrs...)
		tasks = append(tasks, task)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Errors: problems}
	}
	return tasks, nil
}

func decodeTask(obj map[string]any, path string, defaultDue priority.Date) (priority.Task, []FieldError) {
	var (
		task = priority.Task{Dependencies: []int{}}
		errs []FieldError
	)

	task.Title, _ = obj["title"].(string)

	if v, ok := obj["id"]; ok {
		id, err := toInt(v)
		if err != nil {
			errs = append(errs, FieldError{Path: path + "/id", Message: err.Error()})
		}
		task.ID = &id
	}

	due := defaultDue
	if v, ok := obj["due_date"]; ok {
		parsed, err := priority.ParseDate(v.(string))
		if err != nil {
			errs = append(errs, FieldError{Path: path + "/due_date", Message: err.Error()})
		} else {
			due = parsed
		}
	}
	task.DueDate = &due

	hours := priority.DefaultEstimatedHours
	if v, ok := obj["estimated_hours"]; ok {
		f, err := toFloat(v)
		if err != nil {
			errs = append(errs, FieldError{Path: path + "/estimated_hours", Message: err.Error()})
		}
		hours = f
	}
	task.EstimatedHours = &hours

	importance := priority.DefaultImportance
	if v, ok := obj["importance"]; ok {
		n, err := toInt(v)
		if err != nil {
			errs = append(errs, FieldError{Path: path + "/importance", Message: err.Error()})
		}
		importance = n
	}
	task.Importance = &importance

	if v, ok := obj["dependencies"]; ok {
		for j, dep := range v.([]any) {
			n, err := toInt(dep)
			if err != nil {
				errs = append(errs, FieldError{Path: fmt.Sprintf("%s/dependencies/%d", path, j), Message: err.Error()})
				continue
			}
			task.Dependencies = append(task.Dependencies, n)
		}
	}

	return task, errs
}

func toInt(v any) (int, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
	if i, err := n.Int64(); err == nil {
		if i > math.MaxInt32 || i < math.MinInt32 {
			return 0, fmt.Errorf("integer %s out of range", n)
		}
		return int(i), nil
	}
	// 3.0 satisfies the schema's integer type but not Int64.
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("invalid integer %s", n)
	}
	return int(f), nil
}

func toFloat(v any) (float64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected number, got %T", v)
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid number %s", n)
	}
	return f, nil
}

func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return invalid("/", "%v", err)
	}
	out := &ValidationError{}
	collectSchemaErrors(ve, &out.Errors)
	return out
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]FieldError) {
	if len(ve.Causes) == 0 {
		*errs = append(*errs, FieldError{
			Path:    "/" + strings.Join(ve.InstanceLocation, "/"),
			Message: ve.ErrorKind.LocalizedString(printer),
		})
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
