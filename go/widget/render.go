package widget

import (
	"html/template"
	"io"
)

var formTemplate = template.Must(template.New("form").Parse(`
{{- if .Loading -}}
<div>Loading form...</div>
{{- else if .LoadFailed -}}
<div><p>Failed to load form. Please try again later.</p></div>
{{- else -}}
<form method="post" action="{{.Action}}" enctype="multipart/form-data" data-form-id="{{.ID}}">
{{- range .Fields}}
<div>
{{- if .Label}}<label for="{{.Name}}">{{.Label}}{{if .Required}} *{{end}}</label>{{end}}
{{- if eq .Type "textarea"}}<textarea id="{{.Name}}" name="{{.Name}}" placeholder="{{.Placeholder}}">{{.Value}}</textarea>
{{- else if eq .Type "select"}}<select id="{{.Name}}" name="{{.Name}}"><option value="">{{.SelectPrompt}}</option>
{{- range .Options}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}</select>
{{- else if eq .Type "file"}}<input id="{{.Name}}" type="file" name="{{.Name}}"{{if .Accept}} accept="{{.Accept}}"{{end}}{{if .Multiple}} multiple{{end}}>
{{- else}}<input id="{{.Name}}" type="{{.Type}}" name="{{.Name}}" placeholder="{{.Placeholder}}" value="{{.Value}}">
{{- end}}
{{- with .Error}}<span>{{.}}</span>{{end}}
</div>
{{- end}}
{{- if .SiteKey}}
<input type="hidden" name="cf-turnstile-response" value="{{.Token}}">
<div class="cf-turnstile" data-sitekey="{{.SiteKey}}" data-theme="auto"></div>
{{- with .CaptchaError}}<span>{{.}}</span>{{end}}
{{- end}}
<button type="submit"{{if .Disabled}} disabled{{end}}>{{if .Submitting}}Sending...{{else}}{{.SubmitLabel}}{{end}}</button>
{{- if .Success}}
<div>{{.SuccessMessage}}</div>
{{- else if .ErrorMessage}}
<div>{{.ErrorMessage}}</div>
{{- end}}
</form>
{{- end}}
`))

type choiceView struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	Name         string
	Label        string
	Type         FieldType
	Placeholder  string
	SelectPrompt string
	Required     bool
	Accept       string
	Multiple     bool
	Value        string
	Options      []choiceView
	Error        string
}

type formView struct {
	Loading        bool
	LoadFailed     bool
	ID             string
	Action         string
	Fields         []fieldView
	SiteKey        string
	Token          string
	CaptchaError   string
	Disabled       bool
	Submitting     bool
	SubmitLabel    string
	Success        bool
	SuccessMessage string
	ErrorMessage   string
}

// Render writes the current form markup.
func (f *Form) Render(w io.Writer) error {
	return formTemplate.Execute(w, f.view())
}

func (f *Form) view() formView {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.config == nil {
		return formView{Loading: f.loadErr == nil, LoadFailed: f.loadErr != nil}
	}
	v := formView{
		ID:             f.config.ID,
		Action:         f.config.EndpointURL,
		SiteKey:        f.config.siteKey(),
		Token:          f.values.Fields[CaptchaField],
		CaptchaError:   f.errs[CaptchaField],
		Disabled:       !f.canSubmitLocked(),
		Submitting:     f.phase == Submitting,
		SubmitLabel:    f.opts.SubmitLabel,
		Success:        f.phase == Succeeded,
		SuccessMessage: f.opts.SuccessMessage,
	}
	if f.phase == Failed && f.submitErr != nil {
		v.ErrorMessage = f.submitErr.Error()
	}
	for _, fd := range f.fields {
		fv := fieldView{
			Name:         fd.Name,
			Label:        fd.Label,
			Type:         fd.Type,
			Placeholder:  fd.Placeholder,
			SelectPrompt: fd.Placeholder,
			Required:     fd.Required,
			Accept:       fd.Accept,
			Multiple:     fd.Multiple,
			Value:        f.values.Fields[fd.Name],
			Error:        f.errs[fd.Name],
		}
		if fv.SelectPrompt == "" {
			fv.SelectPrompt = "Select an option"
		}
		for _, c := range fd.Options {
			fv.Options = append(fv.Options, choiceView{Value: c.Value, Label: c.Label, Selected: c.Value == fv.Value})
		}
		v.Fields = append(v.Fields, fv)
	}
	return v
}
