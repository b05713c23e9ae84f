package core

import (
	"bytes"
	"encoding/base64"
	htmltmpl "html/template"
	"io"
	"io/fs"
	"mime"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

var (
	templates       tmplCache
	frontendBaseURL string
	tmplMu          sync.RWMutex
)

type (
	tmplCacheEntry struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}
	tmplCache map[string]*tmplCacheEntry // {name: entry}

	Attachment struct {
		Content     *bytes.Buffer // base64 encoded
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) getContextData() ContextData {
	return ContextData{
		FrontendBaseURL: frontendBaseURL,
		Data:            m.TemplateData,
	}
}

func (m *EmailMessage) getTemplate() (*tmplCacheEntry, bool) {
	tmplMu.RLock()
	defer tmplMu.RUnlock()
	entry, ok := templates[m.TemplateName]
	return entry, ok
}

func (m *EmailMessage) Render() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	}
	if m.TemplateName == "" {
		return nil
	}
	entry, ok := m.getTemplate()
	if !ok {
		return errors.Errorf("email template %q not found", m.TemplateName)
	}

	var buff bytes.Buffer
	if entry.text != nil && m.BodyStr == "" {
		if err := entry.text.Execute(&buff, m.getContextData()); err != nil {
			return errors.Wrap(err, "rendering text template")
		}
		m.TextContent = buff.String()
		buff.Reset()
	}
	if entry.html != nil {
		if err := entry.html.Execute(&buff, m.getContextData()); err != nil {
			return errors.Wrap(err, "rendering html template")
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

// Attach reads r and attaches its base64 encoded content.
// contentType defaults to the type guessed from the filename extension.
func (m *EmailMessage) Attach(r io.Reader, filename string, contentType ...string) error {
	at := Attachment{Filename: filename, Content: new(bytes.Buffer)}
	if len(contentType) > 0 {
		at.ContentType = contentType[0]
	} else if at.ContentType = mime.TypeByExtension(path.Ext(filename)); at.ContentType == "" {
		at.ContentType = "application/octet-stream"
	}

	encoder := base64.NewEncoder(base64.StdEncoding, at.Content)
	if _, err := io.Copy(encoder, r); err != nil {
		return errors.Wrap(err, "encoding attachment")
	}
	if err := encoder.Close(); err != nil {
		return errors.Wrap(err, "encoding attachment")
	}

	m.Attachments = append(m.Attachments, at)
	return nil
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool     { return (m.TextContent != "") || (m.HTMLContent != "") }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }

// ParseEmailTemplates parses `templates/email/*.{txt,gohtml}` from fsys.
// Files starting with "_" are base layouts shared by every template of the same extension.
func ParseEmailTemplates(fsys fs.FS, baseURL string, logger Logger) {
	cache := make(tmplCache)
	root := "templates/email"

	fps, err := fs.Glob(fsys, path.Join(root, "*"))
	if err != nil {
		logger.Error("core.ParseEmailTemplates: "+err.Error(), err)
		return
	}

	for _, fp := range fps {
		fname := path.Base(fp)
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		entry, ok := cache[name]
		if !ok {
			entry = new(tmplCacheEntry)
			cache[name] = entry
		}

		base := path.Join(root, "_base"+ext)
		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFS(fsys, base, fp)
			if err != nil {
				logger.Error("core.ParseEmailTemplates: "+err.Error(), err)
				continue
			}
			entry.text = tmpl.Option("missingkey=error").Lookup(fname)
		} else {
			tmpl, err := htmltmpl.ParseFS(fsys, base, fp)
			if err != nil {
				logger.Error("core.ParseEmailTemplates: "+err.Error(), err)
				continue
			}
			entry.html = tmpl.Option("missingkey=error").Lookup(fname)
		}
	}

	tmplMu.Lock()
	templates = cache
	frontendBaseURL = baseURL
	tmplMu.Unlock()
}
