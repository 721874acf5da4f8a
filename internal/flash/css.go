package flash

import "flashq/internal/model"

var (
	toastrClasses = map[model.Category]string{
		model.Any:         "toastr-info",
		model.Default:     "toastr-info",
		model.Error:       "toastr-error",
		model.Warning:     "toastr-warning",
		model.Information: "toastr-info",
		model.Success:     "toastr-success",
	}

	alertClasses = map[model.Category]string{
		model.Any:         "alert alert-secondary",
		model.Default:     "alert alert-primary",
		model.Error:       "alert alert-danger",
		model.Warning:     "alert alert-warning",
		model.Information: "alert alert-info",
		model.Success:     "alert alert-success",
	}
)

// DefaultClass returns the class used for category when a message carries
// no override. Unset mode renders alerts and shares their table.
func DefaultClass(mode model.Mode, category model.Category) string {
	if mode == model.ModeToastr {
		return toastrClasses[category]
	}
	return alertClasses[category]
}

// effectiveClass never mutates m, so an override is never replaced.
func effectiveClass(m model.Message, mode model.Mode) string {
	if m.CSSOverride != "" {
		return m.CSSOverride
	}
	return DefaultClass(mode, m.Category)
}
