// Package validation turns raw form input into typed requests.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"resumefit/internal/datauri"
)

const (
	ToneProfessional = "professional"
	ToneCreative     = "creative"
	ToneTechnical    = "technical"
)

// Policy holds the tunable limits.
type Policy struct {
	MinJobDescriptionChars int
	MinResumeTextChars     int
	MaxResumeBytes         int64
}

// DefaultPolicy returns the limits used when none are configured.
func DefaultPolicy() Policy {
	return Policy{
		MinJobDescriptionChars: 50,
		MinResumeTextChars:     50,
		MaxResumeBytes:         5 * 1024 * 1024,
	}
}

// FieldError describes one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every violated constraint of a form.
type Error struct {
	Fields []FieldError `json:"fields"`
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Messages returns the field messages keyed by field name.
func (e *Error) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message
		}
	}
	return out
}

// AnalyzeForm is the raw analyze input. Exactly one of ResumeDataURI and ResumeText must be set.
type AnalyzeForm struct {
	ResumeDataURI  string `json:"resumeDataUri" validate:"omitempty,datauri,resumesize"`
	ResumeText     string `json:"resumeText" validate:"omitempty,resumetext"`
	JobDescription string `json:"jobDescription" validate:"required,jobdescription"`
	// FileName is the upload name when the form came from a multipart upload.
	FileName string `json:"fileName,omitempty" validate:"-"`
}

// GenerateForm is the raw generation input.
type GenerateForm struct {
	FullName             string `json:"fullName" validate:"required"`
	ContactInfo          string `json:"contactInfo" validate:"required"`
	Skills               string `json:"skills" validate:"required"`
	Experience           string `json:"experience" validate:"required"`
	Education            string `json:"education" validate:"required"`
	TargetJobDescription string `json:"targetJobDescription,omitempty"`
	Tone                 string `json:"tone" validate:"omitempty,oneof=professional creative technical"`
}

// Document is a decoded resume upload.
type Document struct {
	MIMEType string
	FileName string
	Data     []byte
}

// AnalyzeRequest is a validated analyze input.
type AnalyzeRequest struct {
	ResumeText     string
	Document       *Document
	JobDescription string
}

// GenerateRequest is a validated generation input with the tone defaulted.
type GenerateRequest struct {
	FullName             string
	ContactInfo          string
	Skills               string
	Experience           string
	Education            string
	TargetJobDescription string
	Tone                 string
}

// Validator checks forms against a Policy.
type Validator struct {
	policy   Policy
	validate *validator.Validate
}

// New returns a Validator for policy. Zero limits fall back to DefaultPolicy.
func New(policy Policy) *Validator {
	def := DefaultPolicy()
	if policy.MinJobDescriptionChars <= 0 {
		policy.MinJobDescriptionChars = def.MinJobDescriptionChars
	}
	if policy.MinResumeTextChars <= 0 {
		policy.MinResumeTextChars = def.MinResumeTextChars
	}
	if policy.MaxResumeBytes <= 0 {
		policy.MaxResumeBytes = def.MaxResumeBytes
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "datauri", func(fl validator.FieldLevel) bool {
		_, err := datauri.Parse(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "resumesize", func(fl validator.FieldLevel) bool {
		return int64(datauri.DecodedLen(fl.Field().String())) <= policy.MaxResumeBytes
	})
	mustRegister(v, "resumetext", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) >= policy.MinResumeTextChars
	})
	mustRegister(v, "jobdescription", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) >= policy.MinJobDescriptionChars
	})
	v.RegisterStructValidation(exactlyOneResume, AnalyzeForm{})
	return &Validator{policy: policy, validate: v}
}

func exactlyOneResume(sl validator.StructLevel) {
	form := sl.Current().Interface().(AnalyzeForm)
	switch {
	case form.ResumeDataURI == "" && form.ResumeText == "":
		sl.ReportError(form.ResumeDataURI, "resumeDataUri", "ResumeDataURI", "required_without", "ResumeText")
	case form.ResumeDataURI != "" && form.ResumeText != "":
		sl.ReportError(form.ResumeDataURI, "resumeDataUri", "ResumeDataURI", "excluded_with", "ResumeText")
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s: %v", tag, err))
	}
}

// Policy returns the effective limits.
func (v *Validator) Policy() Policy { return v.policy }

// Analyze validates an analyze form.
func (v *Validator) Analyze(form AnalyzeForm) (AnalyzeRequest, error) {
	form.ResumeDataURI = strings.TrimSpace(form.ResumeDataURI)
	form.ResumeText = strings.TrimSpace(form.ResumeText)
	form.JobDescription = strings.TrimSpace(form.JobDescription)
	form.FileName = strings.TrimSpace(form.FileName)

	if err := v.validate.Struct(form); err != nil {
		return AnalyzeRequest{}, v.toError(err)
	}

	req := AnalyzeRequest{ResumeText: form.ResumeText, JobDescription: form.JobDescription}
	if form.ResumeDataURI != "" {
		uri, err := datauri.Parse(form.ResumeDataURI)
		if err != nil {
			return AnalyzeRequest{}, &Error{Fields: []FieldError{{Field: "resumeDataUri", Message: messageFor("resumeDataUri", "datauri", v.policy)}}}
		}
		name := form.FileName
		if name == "" {
			name = uri.Params["name"]
		}
		req.Document = &Document{MIMEType: uri.MIMEType, FileName: name, Data: uri.Data}
	}
	return req, nil
}

// Generate validates a generation form.
func (v *Validator) Generate(form GenerateForm) (GenerateRequest, error) {
	form.FullName = strings.TrimSpace(form.FullName)
	form.ContactInfo = strings.TrimSpace(form.ContactInfo)
	form.Skills = strings.TrimSpace(form.Skills)
	form.Experience = strings.TrimSpace(form.Experience)
	form.Education = strings.TrimSpace(form.Education)
	form.TargetJobDescription = strings.TrimSpace(form.TargetJobDescription)
	form.Tone = strings.ToLower(strings.TrimSpace(form.Tone))

	if err := v.validate.Struct(form); err != nil {
		return GenerateRequest{}, v.toError(err)
	}

	tone := form.Tone
	if tone == "" {
		tone = ToneProfessional
	}
	return GenerateRequest{
		FullName:             form.FullName,
		ContactInfo:          form.ContactInfo,
		Skills:               form.Skills,
		Experience:           form.Experience,
		Education:            form.Education,
		TargetJobDescription: form.TargetJobDescription,
		Tone:                 tone,
	}, nil
}

func (v *Validator) toError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe.Field(), fe.Tag(), v.policy),
		})
	}
	return out
}

var requiredMessages = map[string]string{
	"fullName":       "Full name is required.",
	"contactInfo":    "Contact information is required.",
	"skills":         "Skills are required.",
	"experience":     "Experience details are required.",
	"education":      "Education details are required.",
	"jobDescription": "Job description is required.",
}

func messageFor(field, tag string, p Policy) string {
	switch tag {
	case "required":
		if msg, ok := requiredMessages[field]; ok {
			return msg
		}
		return field + " is required."
	case "required_without":
		return "Provide a resume file or resume text."
	case "excluded_with":
		return "Provide either a resume file or resume text, not both."
	case "datauri":
		return "Resume file must be a base64 data URI (data:<mimetype>;base64,<data>)."
	case "resumesize":
		return fmt.Sprintf("Resume file must be at most %s.", formatBytes(p.MaxResumeBytes))
	case "resumetext":
		return fmt.Sprintf("Resume text must be at least %d characters.", p.MinResumeTextChars)
	case "jobdescription":
		return fmt.Sprintf("Job description must be at least %d characters.", p.MinJobDescriptionChars)
	case "oneof":
		return "Tone must be one of: professional, creative, technical."
	default:
		return field + " is invalid."
	}
}

func formatBytes(n int64) string {
	const mib = 1024 * 1024
	if n%mib == 0 {
		return fmt.Sprintf("%d MB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}
