package productform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
)

// Part est un champ multipart d'une soumission. File est renseigné pour les images.
type Part struct {
	Name  string
	Value string
	File  *FilePart
}

// FilePart référence un upload stocké.
type FilePart struct {
	FileName    string
	ContentType string
	Size        int64

	key string
}

// Payload est une soumission avec les noms de champs attendus par l'API
// catalogue, dans l'ordre d'écriture.
type Payload struct {
	Parts []Part

	staging Staging
}

// NewPayload crée un payload vide dont les fichiers sont lus depuis staging.
func NewPayload(staging Staging) *Payload {
	return &Payload{staging: staging}
}

// Add ajoute un champ texte.
func (p *Payload) Add(name, value string) {
	p.Parts = append(p.Parts, Part{Name: name, Value: value})
}

// AddFile ajoute un fichier lu depuis la clé de stockage au moment de
// l'envoi du payload.
func (p *Payload) AddFile(name, key string, f FileInput) {
	p.Parts = append(p.Parts, Part{
		Name: name,
		File: &FilePart{FileName: f.Name, ContentType: f.ContentType, Size: f.Size, key: key},
	})
}

// Get renvoie la valeur du premier champ texte portant ce nom.
func (p *Payload) Get(name string) (string, bool) {
	for _, part := range p.Parts {
		if part.File == nil && part.Name == name {
			return part.Value, true
		}
	}
	return "", false
}

// Files renvoie les fichiers portant ce nom.
func (p *Payload) Files(name string) []FilePart {
	var out []FilePart
	for _, part := range p.Parts {
		if part.File != nil && part.Name == name {
			out = append(out, *part.File)
		}
	}
	return out
}

// Assemble sérialise le brouillon, sans valider.
func (d *Draft) Assemble() *Payload {
	f := &d.form
	p := &Payload{staging: d.staging}

	p.Add("category", f.Category)
	p.Add("name", f.Name)
	p.Add("description", f.Description)
	p.Add("base_price", f.BasePrice)
	p.Add("isFeatured", strconv.FormatBool(f.IsFeatured))
	p.Add("isSoldOut", strconv.FormatBool(f.IsSoldOut))
	p.Add("isVisible", strconv.FormatBool(f.IsVisible))
	p.Add("isActive", strconv.FormatBool(f.IsActive))
	p.Add("brand", f.Brand)
	p.Add("discount", f.Discount)
	p.Add("specifications", jsonText(f.Specifications))
	p.Add("collections", jsonText(nonNilStrings(f.Collections)))
	p.Add("tags", jsonText(nonNilStrings(f.Tags)))

	for i, v := range f.Variants {
		prefix := fmt.Sprintf("variants[%d]", i)
		p.Add(prefix+"[price]", v.Price)
		p.Add(prefix+"[color]", v.Color)
		for j, s := range v.Sizes {
			p.Add(fmt.Sprintf("%s[sizes][%d][size]", prefix, j), s.Size)
			p.Add(fmt.Sprintf("%s[sizes][%d][stock]", prefix, j), s.Stock)
		}

		seen := map[fileKey]bool{}
		type existing struct {
			URL string `json:"url"`
		}
		var kept []existing
		for _, im := range v.Images {
			if !im.Pending() {
				kept = append(kept, existing{URL: im.URL})
				continue
			}
			fk := im.fingerprint()
			if seen[fk] {
				d.log.Warn().Str("file", im.FileName).Msg("⚠️ Image en double ignorée")
				continue
			}
			seen[fk] = true
			p.Parts = append(p.Parts, Part{
				Name: prefix + "[image]",
				File: &FilePart{
					FileName:    im.FileName,
					ContentType: im.ContentType,
					Size:        im.FileSize,
					key:         im.key,
				},
			})
		}
		if f.Mode == ModeUpdate && len(kept) > 0 {
			p.Add(prefix+"[existingImages]", jsonText(kept))
		}
	}
	return p
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func jsonText(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Reader envoie le payload en multipart/form-data en lisant les fichiers
// stockés au fil de l'eau. Le content type renvoyé porte la boundary. Fermer
// le reader plus tôt arrête le flux.
func (p *Payload) Reader(ctx context.Context) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	contentType := mw.FormDataContentType()
	go func() {
		pw.CloseWithError(p.write(ctx, mw))
	}()
	return pr, contentType
}

func (p *Payload) write(ctx context.Context, mw *multipart.Writer) error {
	for _, part := range p.Parts {
		if part.File == nil {
			if err := mw.WriteField(part.Name, part.Value); err != nil {
				return err
			}
			continue
		}
		if err := p.writeFile(ctx, mw, part.Name, part.File); err != nil {
			return err
		}
	}
	return mw.Close()
}

func (p *Payload) writeFile(ctx context.Context, mw *multipart.Writer, name string, f *FilePart) error {
	if p.staging == nil {
		return errNoStaging
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(f.FileName)))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	rc, err := p.staging.Open(ctx, f.key)
	if err != nil {
		return fmt.Errorf("open staged %s: %w", f.FileName, err)
	}
	defer rc.Close()
	_, err = io.Copy(w, rc)
	return err
}
