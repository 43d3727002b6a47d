package categoryform

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog_admin/internal/models"
	"catalog_admin/internal/productform"
)

func image(name, contentType string, size int64) *productform.FileInput {
	return &productform.FileInput{
		Name:        name,
		Size:        size,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("img:" + name)), nil
		},
	}
}

func sym(s string) *string { return &s }

func validForm() *Form {
	return &Form{
		Name:        "Shirts",
		Description: "Tops for every season",
		IsActive:    true,
		Sizes:       []models.SizeOption{{Label: "S"}, {Label: "M", Symbol: sym("m")}},
		Icon:        image("icon.png", "image/png", 1<<20),
		Banner:      image("banner.jpg", "image/jpeg", 8<<20),
	}
}

func TestValidateCreateRequiresEveryField(t *testing.T) {
	f := &Form{}

	errs := f.Validate(productform.ModeCreate)

	assert.Equal(t, map[string]string{
		FieldName:        "Category name is required",
		FieldDescription: "Description is required",
		FieldSizes:       "Please add at least one size",
		FieldIcon:        "Please select an icon image",
		FieldBanner:      "Please select a banner image",
	}, errs)
}

func TestValidateUpdateKeepsCurrentImages(t *testing.T) {
	f := validForm()
	f.Icon, f.Banner = nil, nil

	assert.Empty(t, f.Validate(productform.ModeUpdate))
	assert.Contains(t, f.Validate(productform.ModeCreate), FieldIcon)
}

func TestValidateAssetCeilings(t *testing.T) {
	tests := []struct {
		name   string
		icon   *productform.FileInput
		banner *productform.FileInput
		want   map[string]string
	}{
		{
			name:   "banner allows 10MB",
			icon:   image("icon.png", "image/png", 5<<20),
			banner: image("banner.png", "image/png", 10<<20),
			want:   map[string]string{},
		},
		{
			name:   "icon over 5MB",
			icon:   image("icon.png", "image/png", 8<<20),
			banner: image("banner.png", "image/png", 8<<20),
			want:   map[string]string{FieldIcon: "File size must be less than 5MB"},
		},
		{
			name:   "banner over 10MB",
			icon:   image("icon.png", "image/png", 1<<20),
			banner: image("banner.png", "image/png", 10<<20+1),
			want:   map[string]string{FieldBanner: "File size must be less than 10MB"},
		},
		{
			name:   "not an image",
			icon:   image("icon.txt", "text/plain", 10),
			banner: image("banner.pdf", "application/pdf", 10),
			want: map[string]string{
				FieldIcon:   "Please select an image file",
				FieldBanner: "Please select an image file",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			f.Icon, f.Banner = tt.icon, tt.banner
			assert.Equal(t, tt.want, f.Validate(productform.ModeCreate))
		})
	}
}

func TestValidateTextLengths(t *testing.T) {
	tests := []struct {
		field string
		set   func(*Form)
		want  string
	}{
		{FieldName, func(f *Form) { f.Name = " a " }, "Category name must be at least 2 characters"},
		{FieldName, func(f *Form) { f.Name = strings.Repeat("n", 51) }, "Category name cannot exceed 50 characters"},
		{FieldDescription, func(f *Form) { f.Description = "too short" }, "Description must be at least 10 characters"},
		{FieldDescription, func(f *Form) { f.Description = strings.Repeat("d", 201) }, "Description cannot exceed 200 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			f := validForm()
			tt.set(f)
			assert.Equal(t, map[string]string{tt.field: tt.want}, f.Validate(productform.ModeCreate))
		})
	}
}

func TestValidateSizes(t *testing.T) {
	f := validForm()
	f.Sizes = []models.SizeOption{{Label: "M"}, {Label: " m "}}
	assert.Equal(t, "This label is already used. Please use a unique label.", f.Validate(productform.ModeCreate)[FieldSizes])

	f = validForm()
	f.Sizes = []models.SizeOption{{Label: "M"}, {Label: "  "}}
	assert.Equal(t, "Please enter a label for the size", f.Validate(productform.ModeCreate)[FieldSizes])

	f = validForm()
	f.Sizes = []models.SizeOption{{Label: " XL ", Symbol: sym(" ")}, {Label: "L", Symbol: sym(" l ")}}
	assert.Empty(t, f.Validate(productform.ModeCreate))
	assert.Equal(t, `[{"label":"XL"},{"label":"L","symbol":"l"}]`, sizesJSON(f.Sizes))
}
