package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/pairdash/internal/settings"
	"github.com/rovshanmuradov/pairdash/internal/ui/style"
)

// FieldType represents the type of form field
type FieldType int

const (
	FieldTypeNumber FieldType = iota
	FieldTypeCheckbox
)

// FormField represents a single form field
type FormField struct {
	Name  string
	Label string
	Type  FieldType
	Value string
	Error string

	kind      settings.Kind
	textInput textinput.Model
}

// Form is a single column of labelled inputs. Number fields are text
// inputs, checkboxes toggle with space.
type Form struct {
	settingID  int
	fields     []FormField
	focusIndex int
	width      int
	labelWidth int
	errors     []string

	labelStyle    lipgloss.Style
	focusedLabel  lipgloss.Style
	checkboxStyle lipgloss.Style
	errorStyle    lipgloss.Style
}

// NewForm creates an empty form
func NewForm() *Form {
	palette := style.DefaultPalette()

	return &Form{
		fields: make([]FormField, 0),

		labelStyle: lipgloss.NewStyle().
			Foreground(palette.TextSecondary),

		focusedLabel: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		checkboxStyle: lipgloss.NewStyle().
			Foreground(palette.Primary),

		errorStyle: lipgloss.NewStyle().
			Foreground(palette.Error),
	}
}

// NewSettingsForm creates a form with one field per setting value
func NewSettingsForm(s settings.Form) *Form {
	f := NewForm()
	f.settingID = s.SettingID
	for _, field := range s.Fields {
		fieldType := FieldTypeNumber
		if field.Kind == settings.KindBool {
			fieldType = FieldTypeCheckbox
		}
		f.AddField(field.Name, fieldType, field.Label)
		f.fields[len(f.fields)-1].kind = field.Kind
		f.SetFieldValue(field.Name, field.Value)
	}
	return f
}

// AddField adds a field to the form
func (f *Form) AddField(name string, fieldType FieldType, label string) *Form {
	ti := textinput.New()
	ti.Width = 16
	ti.Prompt = ""
	if fieldType == FieldTypeNumber {
		ti.Placeholder = "0"
		ti.CharLimit = 24
	}

	f.fields = append(f.fields, FormField{
		Name:      name,
		Label:     label,
		Type:      fieldType,
		textInput: ti,
	})
	if w := lipgloss.Width(label); w > f.labelWidth {
		f.labelWidth = w
	}

	// Focus first field
	if len(f.fields) == 1 {
		f.focus(0)
	}

	return f
}

// SetFieldValue sets the value of a field
func (f *Form) SetFieldValue(name, value string) *Form {
	for i := range f.fields {
		if f.fields[i].Name == name {
			f.fields[i].Value = value
			f.fields[i].textInput.SetValue(value)
			break
		}
	}
	return f
}

// GetValue returns the value of a specific field
func (f *Form) GetValue(name string) string {
	for _, field := range f.fields {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

// FieldCount returns the number of fields
func (f *Form) FieldCount() int {
	return len(f.fields)
}

// Focused returns the name of the focused field
func (f *Form) Focused() string {
	if len(f.fields) == 0 {
		return ""
	}
	return f.fields[f.focusIndex].Name
}

// Settings returns the edited values as a settings form
func (f *Form) Settings() settings.Form {
	out := settings.Form{SettingID: f.settingID, Fields: make([]settings.Field, 0, len(f.fields))}
	for _, field := range f.fields {
		out.Fields = append(out.Fields, settings.Field{
			Name:  field.Name,
			Label: field.Label,
			Kind:  field.kind,
			Value: strings.TrimSpace(field.Value),
		})
	}
	return out
}

// SetErrors shows validation errors. An error starting with "<field>:" is
// shown next to that field, anything else under the form. nil clears all.
func (f *Form) SetErrors(errs []error) *Form {
	f.errors = f.errors[:0]
	for i := range f.fields {
		f.fields[i].Error = ""
	}

	for _, err := range errs {
		msg := err.Error()
		attached := false
		for i := range f.fields {
			prefix := f.fields[i].Name + ": "
			if strings.HasPrefix(msg, prefix) && f.fields[i].Error == "" {
				f.fields[i].Error = strings.TrimPrefix(msg, prefix)
				attached = true
				break
			}
		}
		if !attached {
			f.errors = append(f.errors, msg)
		}
	}
	return f
}

// FieldError returns the error shown next to a field
func (f *Form) FieldError(name string) string {
	for _, field := range f.fields {
		if field.Name == name {
			return field.Error
		}
	}
	return ""
}

// SetWidth sets the form width
func (f *Form) SetWidth(width int) *Form {
	f.width = width
	inputWidth := width - f.labelWidth - 6
	if inputWidth > 40 {
		inputWidth = 40
	}
	if inputWidth > 8 {
		for i := range f.fields {
			f.fields[i].textInput.Width = inputWidth
		}
	}
	return f
}

// Update handles form input and updates
func (f *Form) Update(msg tea.Msg) (*Form, tea.Cmd) {
	if len(f.fields) == 0 {
		return f, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down", "enter":
			f.focus((f.focusIndex + 1) % len(f.fields))
			return f, nil
		case "shift+tab", "up":
			f.focus((f.focusIndex - 1 + len(f.fields)) % len(f.fields))
			return f, nil
		case " ":
			if f.fields[f.focusIndex].Type == FieldTypeCheckbox {
				f.toggleCheckbox()
				return f, nil
			}
		}
	}

	field := &f.fields[f.focusIndex]
	if field.Type != FieldTypeNumber {
		return f, nil
	}

	var cmd tea.Cmd
	field.textInput, cmd = field.textInput.Update(msg)
	field.Value = field.textInput.Value()
	field.Error = ""
	return f, cmd
}

// View renders the form
func (f *Form) View() string {
	if len(f.fields) == 0 {
		return "No fields defined"
	}

	var content strings.Builder
	for i, field := range f.fields {
		labelStyle := f.labelStyle
		marker := "  "
		if i == f.focusIndex {
			labelStyle = f.focusedLabel
			marker = "› "
		}
		content.WriteString(marker)
		content.WriteString(labelStyle.Width(f.labelWidth + 1).Render(field.Label))
		content.WriteString(" ")

		switch field.Type {
		case FieldTypeNumber:
			content.WriteString(field.textInput.View())
		case FieldTypeCheckbox:
			checkbox := "☐"
			if field.Value == "true" {
				checkbox = "☑"
			}
			content.WriteString(f.checkboxStyle.Render(checkbox))
		}

		if field.Error != "" {
			content.WriteString(" ")
			content.WriteString(f.errorStyle.Render("⚠ " + field.Error))
		}
		if i < len(f.fields)-1 {
			content.WriteString("\n")
		}
	}

	for _, e := range f.errors {
		content.WriteString("\n")
		content.WriteString(f.errorStyle.Render("⚠ " + e))
	}

	return content.String()
}

func (f *Form) focus(index int) {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focusIndex].textInput.Blur()
	f.focusIndex = index
	if f.fields[index].Type == FieldTypeNumber {
		f.fields[index].textInput.Focus()
	}
}

func (f *Form) toggleCheckbox() {
	field := &f.fields[f.focusIndex]
	if field.Value == "true" {
		field.Value = "false"
	} else {
		field.Value = "true"
	}
}
