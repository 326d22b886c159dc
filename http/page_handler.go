package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"cpa-savings/domain"
	"cpa-savings/service"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html").
		Funcs(template.FuncMap{
			"scale": func(fraction, length float64) string { return fmt.Sprintf("%.1f", fraction*length) },
		}).
		ParseFS(templateFS, "templates/page.html"),
)

type FormField struct {
	Name        string
	Label       string
	Placeholder string
	Type        string
}

var costFields = []FormField{
	{service.FieldEmployees, "Number of employees in accounting/finance", "e.g., 2", "text"},
	{service.FieldMonthlyCost, "Monthly cost of in-house accountant(s)", "e.g., 8000", "text"},
	{service.FieldPenaltyFees, "Average annual compliance/penalty fees", "e.g., 1500", "text"},
	{service.FieldSoftwareSpend, "Monthly spend on accounting software/tools", "e.g., 300", "text"},
	{service.FieldHoursSpent, "Estimated hours/month on bookkeeping", "e.g., 40", "text"},
}

var contactFields = []FormField{
	{service.FieldFirstName, "First name", "Jane", "text"},
	{service.FieldLastName, "Last name", "Doe", "text"},
	{service.FieldEmail, "Email", "jane@company.com", "email"},
}

type Notice struct {
	Kind    string // "success" or "error"
	Message string
}

// PageData is everything one render of the page needs. A fresh value is
// built per request; nothing is carried between submissions.
type PageData struct {
	CostFields    []FormField
	ContactFields []FormField
	LeadsEnabled  bool
	Values        map[string]string
	Errors        *service.ValidationError
	View          *domain.SavingsView
	Summary       template.HTML
	Notice        *Notice
	LeadID        string
}

func (d PageData) Value(name string) string { return d.Values[name] }

func (d PageData) FieldError(name string) string { return d.Errors.Message(name) }

type PageHandler struct {
	savings    *service.SavingsService
	dispatcher *service.LeadDispatcher
	mode       service.CoercionMode
	bookingURL string
}

func NewPageHandler(
	savings *service.SavingsService,
	dispatcher *service.LeadDispatcher,
	mode service.CoercionMode,
	bookingURL string,
) *PageHandler {
	return &PageHandler{
		savings:    savings,
		dispatcher: dispatcher,
		mode:       mode,
		bookingURL: bookingURL,
	}
}

func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, http.StatusOK, h.newPageData(nil))
	case http.MethodPost:
		h.submit(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PageHandler) newPageData(values map[string]string) PageData {
	if values == nil {
		values = map[string]string{}
	}
	return PageData{
		CostFields:    costFields,
		ContactFields: contactFields,
		LeadsEnabled:  h.dispatcher.Enabled(),
		Values:        values,
	}
}

func (h *PageHandler) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string, len(r.PostForm))
	for name := range r.PostForm {
		fields[name] = r.PostForm.Get(name)
	}
	data := h.newPageData(fields)

	verr := &service.ValidationError{}
	input, err := service.ParseCalculatorInput(fields, h.mode)
	mergeFieldErrors(verr, err)

	var (
		identity domain.Identity
		wantLead bool
	)
	if data.LeadsEnabled {
		identity, wantLead, err = service.ParseIdentity(fields)
		mergeFieldErrors(verr, err)
	}

	if len(verr.Fields) > 0 {
		data.Errors = verr
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	result, err := h.savings.Calculate(r.Context(), input)
	if err != nil {
		data.Notice = &Notice{Kind: "error", Message: err.Error()}
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	view := service.Present(result, h.bookingURL)
	data.View = &view
	if summary, err := service.RenderSummary(view); err != nil {
		log.Printf("Warning: %v", err)
	} else {
		data.Summary = template.HTML(summary)
	}

	if wantLead {
		lead, err := h.dispatcher.Dispatch(r.Context(), identity, result)
		if err != nil {
			log.Printf("Warning: could not queue lead: %v", err)
			data.Notice = &Notice{
				Kind:    "error",
				Message: "We couldn't send your details right now. Your estimate is below.",
			}
		} else {
			data.LeadID = lead.ID
			data.Notice = &Notice{
				Kind:    "success",
				Message: fmt.Sprintf("Thanks, %s! We'll be in touch at %s.", identity.FirstName, identity.Email),
			}
		}
	}

	h.render(w, http.StatusOK, data)
}

func mergeFieldErrors(dst *service.ValidationError, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		dst.Fields = append(dst.Fields, verr.Fields...)
	}
}

func (h *PageHandler) render(w http.ResponseWriter, status int, data PageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		log.Printf("Error rendering page: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing page: %v", err)
	}
}
