package productform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

// Staging garde le contenu des uploads en attente jusqu'à la soumission du
// brouillon ou la suppression de l'image.
type Staging interface {
	// Stage stocke le fichier sous key et renvoie une URL d'aperçu pour l'UI.
	Stage(ctx context.Context, key string, f FileInput) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Release(ctx context.Context, key string) error
}

// FileInput est un fichier choisi par l'utilisateur.
type FileInput struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

func FromFileHeader(fh *multipart.FileHeader) FileInput {
	return FileInput{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// mediaType renvoie le type déclaré, ou analyse le contenu si le client n'en
// a pas déclaré.
func (f FileInput) mediaType() (string, error) {
	if f.ContentType != "" && f.ContentType != "application/octet-stream" {
		if mt, _, err := mime.ParseMediaType(f.ContentType); err == nil {
			return mt, nil
		}
		return f.ContentType, nil
	}
	if f.Open == nil {
		return "", errors.New("file has no content")
	}
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	m, err := mimetype.DetectReader(rc)
	if err != nil {
		return "", err
	}
	mt, _, _ := mime.ParseMediaType(m.String())
	return mt, nil
}

// ImageLimits plafonne la taille d'une image uploadée. Chaque type de visuel a
// son propre plafond et ses messages.
type ImageLimits struct {
	MaxBytes int64
	TooLarge string
	NotImage string
}

var (
	ProductImageLimits = ImageLimits{MaxBytes: 5 << 20, TooLarge: "File size must be less than 5MB", NotImage: msgNotImage}
	IconImageLimits    = ImageLimits{MaxBytes: 5 << 20, TooLarge: "File size must be less than 5MB", NotImage: "Please select an image file"}
	BannerImageLimits  = ImageLimits{MaxBytes: 10 << 20, TooLarge: "File size must be less than 10MB", NotImage: "Please select an image file"}
)

// CheckImage renvoie le type MIME de f, ou le message expliquant pourquoi f
// est refusé selon limits.
func CheckImage(f FileInput, limits ImageLimits) (mediaType, problem string) {
	mt, err := f.mediaType()
	if err != nil {
		return "", msgReadError
	}
	if !strings.HasPrefix(mt, "image/") {
		if limits.NotImage == "" {
			return mt, msgNotImage
		}
		return mt, limits.NotImage
	}
	if f.Size > limits.MaxBytes {
		return mt, limits.TooLarge
	}
	return mt, ""
}

const stageConcurrency = 4

const (
	msgNotImage  = "Please select image files only"
	msgReadError = "Error reading file"
)

var errNoStaging = errors.New("productform: no staging store configured")

// UploadBatch est un lot de fichiers acceptés en route vers une variante. Il
// est préparé et validé sous le verrou du brouillon ; Stage tourne sans.
type UploadBatch struct {
	variantID string
	staging   Staging
	items     []*batchItem
	committed bool
}

type batchItem struct {
	index  int
	file   FileInput
	image  Image
	staged bool
	err    error
}

// Len est le nombre de fichiers acceptés dans le lot.
func (b *UploadBatch) Len() int { return len(b.items) }

// PrepareUpload vérifie chaque fichier choisi pour la variante i. Les fichiers
// refusés sont enregistrés comme erreurs d'upload à leur position dans la
// sélection ; les autres forment le lot renvoyé.
func (d *Draft) PrepareUpload(i int, files []FileInput) (*UploadBatch, error) {
	v, err := d.variant(i)
	if err != nil {
		return nil, err
	}
	if d.staging == nil {
		return nil, errNoStaging
	}
	seen := make(map[fileKey]bool, len(v.Images)+len(files))
	for _, im := range v.Images {
		seen[im.fingerprint()] = true
	}

	b := &UploadBatch{variantID: v.ID, staging: d.staging}
	for idx, f := range files {
		key := uploadKey{v.ID, idx}
		mt, problem := CheckImage(f, ProductImageLimits)
		if problem != "" {
			d.uploadErrs[key] = problem
			continue
		}
		fk := fileKey{f.Name, f.Size}
		if seen[fk] {
			d.uploadErrs[key] = "Duplicate file: " + f.Name
			continue
		}
		seen[fk] = true

		id := d.newID()
		f.ContentType = mt
		b.items = append(b.items, &batchItem{
			index: idx,
			file:  f,
			image: Image{
				ID:          id,
				FileName:    f.Name,
				FileSize:    f.Size,
				ContentType: mt,
				Alt:         f.Name,
				key:         stagingKey(d.id, id, f.Name),
			},
		})
	}
	return b, nil
}

func stagingKey(draftID, imageID, name string) string {
	return fmt.Sprintf("drafts/%s/%s%s", draftID, imageID, strings.ToLower(path.Ext(name)))
}

// Stage stocke tous les fichiers du lot en parallèle. Un fichier qui ne peut
// pas être stocké est marqué en échec ; les autres ne sont pas touchés.
func (b *UploadBatch) Stage(ctx context.Context) {
	var g errgroup.Group
	g.SetLimit(stageConcurrency)
	for _, it := range b.items {
		it := it
		g.Go(func() error {
			url, err := b.staging.Stage(ctx, it.image.key, it.file)
			if err != nil {
				it.err = err
				return nil
			}
			it.image.PreviewURL = url
			it.staged = true
			return nil
		})
	}
	_ = g.Wait()
}

// Release supprime les fichiers stockés d'un lot non validé.
func (b *UploadBatch) Release(ctx context.Context) {
	if b.committed {
		return
	}
	for _, it := range b.items {
		if it.staged {
			_ = b.staging.Release(ctx, it.image.key)
		}
	}
}

// CommitUpload rattache un lot stocké à sa variante en une fois. Si la
// variante a été supprimée entre-temps, les fichiers sont libérés et
// ErrVariantGone est renvoyé.
func (d *Draft) CommitUpload(ctx context.Context, b *UploadBatch) error {
	i := d.VariantIndex(b.variantID)
	if i < 0 {
		b.Release(ctx)
		return ErrVariantGone
	}
	v := &d.form.Variants[i]
	seen := make(map[fileKey]bool, len(v.Images))
	for _, im := range v.Images {
		seen[im.fingerprint()] = true
	}

	wasEmpty := len(v.Images) == 0
	for _, it := range b.items {
		key := uploadKey{v.ID, it.index}
		if it.err != nil {
			d.log.Warn().Err(it.err).Str("file", it.file.Name).Msg("⚠️ Stockage temporaire échoué")
			d.uploadErrs[key] = msgReadError
			continue
		}
		fk := it.image.fingerprint()
		if seen[fk] {
			// un autre lot a rattaché le même fichier pendant le stockage de celui-ci
			d.uploadErrs[key] = "Duplicate file: " + it.file.Name
			_ = d.staging.Release(ctx, it.image.key)
			continue
		}
		seen[fk] = true
		v.Images = append(v.Images, it.image)
	}
	b.committed = true
	if wasEmpty && len(v.Images) > 0 {
		setPrimary(v, 0)
	}
	d.errs.set(v.ID, "images", Validate(FieldVariantImages, v.Images))
	return nil
}

// UploadImages traite un lot complet pour la variante i sans rendre la main
// entre les étapes.
func (d *Draft) UploadImages(ctx context.Context, i int, files []FileInput) error {
	b, err := d.PrepareUpload(i, files)
	if err != nil {
		return err
	}
	b.Stage(ctx)
	return d.CommitUpload(ctx, b)
}

// RemoveImage retire l'image k de la variante i. Si c'était l'image principale,
// la nouvelle première image prend le relais. L'erreur d'upload à la position k
// est effacée avec elle.
func (d *Draft) RemoveImage(ctx context.Context, i, k int) error {
	v, err := d.variant(i)
	if err != nil {
		return err
	}
	if k < 0 || k >= len(v.Images) {
		return ErrOutOfRange
	}
	removed := v.Images[k]
	v.Images = append(v.Images[:k:k], v.Images[k+1:]...)
	d.releaseImages(ctx, []Image{removed})
	delete(d.uploadErrs, uploadKey{v.ID, k})
	if removed.IsPrimary && len(v.Images) > 0 {
		setPrimary(v, 0)
	}
	d.errs.set(v.ID, "images", Validate(FieldVariantImages, v.Images))
	return nil
}

// TogglePrimary fait de l'image k la seule image principale de la variante i.
func (d *Draft) TogglePrimary(i, k int) error {
	v, err := d.variant(i)
	if err != nil {
		return err
	}
	if k < 0 || k >= len(v.Images) {
		return ErrOutOfRange
	}
	setPrimary(v, k)
	return nil
}

// setPrimary est le seul à écrire Image.IsPrimary.
func setPrimary(v *Variant, k int) {
	for j := range v.Images {
		v.Images[j].IsPrimary = j == k
	}
}

func (d *Draft) releaseImages(ctx context.Context, images []Image) {
	if d.staging == nil {
		return
	}
	for _, im := range images {
		if !im.Pending() {
			continue
		}
		if err := d.staging.Release(ctx, im.key); err != nil {
			d.log.Warn().Err(err).Str("key", im.key).Msg("⚠️ Impossible de libérer l'image temporaire")
		}
	}
}
