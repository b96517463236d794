package dispatch

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"newsletter-back/internal/model"
	"newsletter-back/pkg/mailer"
)

const DefaultBrand = "Newsletter Service"

const emailTemplate = `<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; }
    .content { padding: 20px; background-color: #f9f9f9; }
    .footer { padding: 20px; text-align: center; font-size: 12px; color: #666; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{ .Title }}</h1>
    </div>
    <div class="content">
      {{ .Body }}
    </div>
    <div class="footer">
      <p>You're receiving this email because you subscribed to {{ .Topic }}.</p>
      <p>&copy; {{ .Year }} {{ .Brand }}. All rights reserved.</p>
    </div>
  </div>
</body>
</html>
`

type templateData struct {
	Title string
	Body  template.HTML
	Topic string
	Year  int
	Brand string
}

// Renderer turns a content item into the email sent to one subscriber.
type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
	brand  string
	now    func() time.Time
}

func NewRenderer(brand string) *Renderer {
	if brand == "" {
		brand = DefaultBrand
	}

	policy := bluemonday.NewPolicy()
	policy.AllowStandardURLs()
	policy.AllowElements(
		"p", "br",
		"strong", "b", "em", "i",
		"ul", "ol", "li",
		"code", "pre", "blockquote",
	)
	policy.AllowAttrs("href").OnElements("a")
	policy.RequireNoFollowOnLinks(true)

	return &Renderer{
		tmpl:   template.Must(template.New("newsletter").Parse(emailTemplate)),
		policy: policy,
		brand:  brand,
		now:    time.Now,
	}
}

func (r *Renderer) Render(item model.DueContent, to model.Subscriber) (mailer.Message, error) {
	body := strings.ReplaceAll(item.Body, "\r\n", "\n")

	data := templateData{
		Title: item.Title,
		Body:  template.HTML(strings.ReplaceAll(r.policy.Sanitize(body), "\n", "<br>")),
		Topic: item.Topic.Name,
		Year:  r.now().Year(),
		Brand: r.brand,
	}

	if data.Topic == "" {
		data.Topic = "our newsletter"
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return mailer.Message{}, fmt.Errorf("failed to render email: %w", err)
	}

	return mailer.Message{
		To:      to.Email,
		Subject: item.Title,
		Text:    body,
		HTML:    buf.String(),
	}, nil
}
