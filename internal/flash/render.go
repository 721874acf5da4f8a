package flash

import (
	"html"
	"html/template"
	"strings"

	"flashq/internal/model"
)

// DefaultCloseButtonHTML works with both Bootstrap 4 and 5 alerts.
const DefaultCloseButtonHTML = "<button type='button' class='btn-close close' data-bs-dismiss='alert' data-dismiss='alert' aria-label='Close'><span aria-hidden='true' class='d-none'>&times;</span></button>"

const toastrCloseButtonScript = "<script type='text/javascript'>toastr.options = { 'closeButton': true }</script>\n"

type renderer struct {
	opts     Options
	sb       strings.Builder
	rendered int
}

func newRenderer(opts Options) *renderer {
	return &renderer{opts: opts}
}

func (r *renderer) write(m model.Message, class string) {
	r.rendered++
	switch r.opts.Mode {
	case model.ModeToastr:
		r.toastr(m, class)
	default:
		r.alert(m, class)
	}
}

func (r *renderer) toastr(m model.Message, class string) {
	fn := strings.TrimPrefix(class, "toastr-")
	r.sb.WriteString("<script type='text/javascript'>$(function() { toastr[\"")
	r.sb.WriteString(template.JSEscapeString(fn))
	r.sb.WriteString("\"]('")
	r.sb.WriteString(template.JSEscapeString(m.Content))
	r.sb.WriteString("'); });</script>")
}

func (r *renderer) alert(m model.Message, class string) {
	r.sb.WriteString("<div class='flash-message ")
	r.sb.WriteString(html.EscapeString(class))
	if r.opts.ShowCloseButton {
		r.sb.WriteString(" alert-dismissible")
	}
	r.sb.WriteString("' role='alert'>")
	r.sb.WriteString(html.EscapeString(m.Content))
	r.sb.WriteString("\n")
	if r.opts.ShowCloseButton {
		r.sb.WriteString(r.opts.CloseButtonHTML)
	}
	r.sb.WriteString("</div>")
}

// markup finishes the output, adding the toastr close-button config once.
func (r *renderer) markup() string {
	if r.opts.Mode == model.ModeToastr && r.opts.ShowCloseButton && r.rendered > 0 {
		r.sb.WriteString(toastrCloseButtonScript)
	}
	return r.sb.String()
}
