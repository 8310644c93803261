package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"

	"proposalgen/services"
)

// htmlWriter writes escaped markup and keeps the first write error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) tag(name, class, content string) {
	if class != "" {
		h.raw(fmt.Sprintf(`<%s class="%s">`, name, class))
	} else {
		h.raw("<" + name + ">")
	}
	h.text(content)
	h.raw("</" + name + ">")
}

func (h *htmlWriter) bullets(nodes []services.BulletNode) {
	if len(nodes) == 0 {
		return
	}
	h.raw("<ul>")
	for _, n := range nodes {
		h.raw("<li>")
		h.text(n.Text)
		h.bullets(n.Children)
		h.raw("</li>")
	}
	h.raw("</ul>")
}

// section wraps a render function writing through an htmlWriter.
func section(render func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		render(h)
		return h.err
	})
}

// previewPage is the document shell around body.
func previewPage(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="de"><head><meta charset="utf-8"><title>`)
		h.text(title)
		h.raw(`</title></head><body class="proposal-preview">`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</body></html>`)
		return h.err
	})
}

func previewRecipient(data services.DocumentPayload) templ.Component {
	return section(func(h *htmlWriter) {
		h.raw(`<section class="recipient">`)
		for _, line := range []string{data.CompanyName, data.Street, data.PostalCode + " " + data.City, data.Country} {
			h.tag("div", "", line)
		}
		h.raw(`</section>`)
	})
}

func previewHeader(data services.DocumentPayload) templ.Component {
	return section(func(h *htmlWriter) {
		h.tag("h1", "", "Angebot Nr. "+data.OfferNumber)
		h.tag("p", "meta", fmt.Sprintf("Datum: %s · Gültig bis: %s · Lieferzeit: %s", data.Date, data.OfferValidUntil, data.DeliveryTime))
		if data.ProjectName != "" {
			h.tag("h2", "project", data.ProjectName)
		}
	})
}

func previewServiceRow(pos int, s services.PayloadService) templ.Component {
	return section(func(h *htmlWriter) {
		unit, total := s.UnitPrice+" €", s.TotalPrice+" €"
		if s.OnRequest {
			unit, total = "auf Anfrage", "auf Anfrage"
		}
		h.raw("<tr>")
		h.tag("td", "", fmt.Sprint(pos))
		h.raw(`<td class="service">`)
		name := s.Name
		if s.SubName != "" {
			name += " " + s.SubName
		}
		h.tag("strong", "", name)
		h.bullets(s.Description)
		if s.Link != "" {
			h.raw(`<a href="`)
			h.text(s.Link)
			h.raw(`">Referenz ansehen</a>`)
		}
		h.raw("</td>")
		h.tag("td", "", fmt.Sprint(s.Quantity))
		h.tag("td", "money", unit)
		h.tag("td", "money", total)
		h.raw("</tr>")
	})
}

func previewServices(data services.DocumentPayload) templ.Component {
	rows := make([]templ.Component, len(data.Services))
	for i, s := range data.Services {
		rows[i] = previewServiceRow(i+1, s)
	}
	return templ.Join(
		templ.Raw(`<table class="services"><thead><tr><th>Pos.</th><th>Leistung</th><th>Menge</th><th>Einzelpreis</th><th>Gesamt</th></tr></thead><tbody>`),
		templ.Join(rows...),
		templ.Raw(`</tbody></table>`),
	)
}

func previewTotals(data services.DocumentPayload) templ.Component {
	return section(func(h *htmlWriter) {
		h.raw(`<table class="totals">`)
		row := func(label, value string) {
			h.raw("<tr>")
			h.tag("td", "", label)
			h.tag("td", "money", value)
			h.raw("</tr>")
		}
		row("Zwischensumme netto", data.SubtotalNet+" €")
		if data.HasDiscount {
			row(data.DiscountDescription, "-"+data.DiscountAmount+" €")
		}
		row("Gesamtsumme netto", data.TotalNet+" €")
		row("MwSt.", data.TotalVAT+" €")
		row("Gesamtsumme brutto", data.TotalGross+" €")
		h.raw(`</table>`)

		if data.RequiresDownPayment {
			h.tag("p", "down-payment", "Anzahlung: "+data.DownPaymentAmount+" €")
		}
	})
}

func previewImages(data services.DocumentPayload, withImages bool) templ.Component {
	return section(func(h *htmlWriter) {
		if !data.HasImages {
			return
		}
		h.raw(`<section class="images">`)
		for _, img := range data.Images {
			h.raw("<figure>")
			if withImages && img.HasImage && strings.HasPrefix(img.Src, "data:image/") {
				h.raw(`<img src="`)
				h.text(img.Src)
				h.raw(`" alt="`)
				h.text(img.Title)
				h.raw(`">`)
			}
			h.tag("figcaption", "", img.Title)
			h.raw("</figure>")
		}
		h.raw(`</section>`)
	})
}

func previewFooter(data services.DocumentPayload) templ.Component {
	return section(func(h *htmlWriter) {
		h.tag("p", "signature", data.SignatureName)
		h.tag("footer", "", strings.Join([]string{data.Company.LegalName, data.Company.Address, data.Company.ContactEmail}, " · "))
	})
}

// ProposalPreview renders the document payload as a standalone HTML page.
// Image data is embedded only when withImages is set.
func ProposalPreview(data services.DocumentPayload, withImages bool) templ.Component {
	return previewPage("Angebot "+data.OfferNumber, templ.Join(
		previewRecipient(data),
		previewHeader(data),
		previewServices(data),
		previewTotals(data),
		previewImages(data, withImages),
		previewFooter(data),
	))
}

// HandleProposalPreview returns a handler that renders a stored proposal as HTML.
// Incomplete proposals are previewed too; ?images=false omits image data.
func HandleProposalPreview(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return e.String(http.StatusBadRequest, "Missing proposal ID")
		}

		_, a, err := loadProposal(app, env, id)
		if err != nil {
			log.Printf("preview: %v", err)
			if errors.Is(err, services.ErrCorruptSnapshot) {
				return e.String(http.StatusUnprocessableEntity, "Stored proposal is corrupt")
			}
			return e.String(http.StatusNotFound, "Proposal not found")
		}

		withImages := true
		if v := e.Request.URL.Query().Get("images"); v != "" {
			withImages = cast.ToBool(v)
		}

		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		e.Response.WriteHeader(http.StatusOK)
		return ProposalPreview(a.ToDocumentPayload(), withImages).Render(e.Request.Context(), e.Response)
	}
}
