package productform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog_admin/internal/models"
)

func TestRemoveLastVariantIsRefused(t *testing.T) {
	d := New(Options{})
	before := d.Form()

	err := d.RemoveVariant(context.Background(), 0)

	var n *Notice
	require.ErrorAs(t, err, &n)
	assert.ErrorIs(t, err, ErrLastVariant)
	assert.Equal(t, "At least one variant is required.", n.Message)
	assert.Equal(t, before, d.Form())
}

func TestVariantCountNeverDropsBelowOne(t *testing.T) {
	ctx := context.Background()
	d := New(Options{})
	d.AddVariant()
	d.AddVariant()
	for i := 0; i < 5; i++ {
		_ = d.RemoveVariant(ctx, 0)
		assert.GreaterOrEqual(t, len(d.Form().Variants), 1)
	}
	assert.Len(t, d.Form().Variants, 1)
}

func TestAddVariantSeedsErrors(t *testing.T) {
	d := New(Options{})
	i := d.AddVariant()

	errs := d.Errors()
	assert.Equal(t, 1, i)
	assert.Equal(t, "Price must be a positive number", errs["variant_1_price"])
	assert.Equal(t, "Color is required", errs["variant_1_color"])
	assert.Equal(t, "At least one size is required", errs["variant_1_sizes"])
	assert.Equal(t, "At least one image is required", errs["variant_1_images"])
	assert.NotContains(t, errs, "variant_1_stock")
	assert.NotContains(t, errs, "variant_0_price")
}

func TestAddVariantSizeSeeding(t *testing.T) {
	d := New(Options{})
	require.NoError(t, d.AddSizeToVariant(0, "S"))
	require.NoError(t, d.AddSizeToVariant(0, "L"))
	require.NoError(t, d.SetSizeStock(0, 1, "4"))

	d.AddVariant()
	sizes := d.Form().Variants[1].Sizes
	require.Len(t, sizes, 2)
	assert.Equal(t, "S", sizes[0].Size)
	assert.Equal(t, "L", sizes[1].Size)
	assert.Empty(t, sizes[1].Stock)

	d.SetCategory("cat-1", []string{"XS", "XL"})
	d.AddVariant()
	sizes = d.Form().Variants[2].Sizes
	require.Len(t, sizes, 2)
	assert.Equal(t, "XS", sizes[0].Size)
}

func TestRemovingMiddleVariantKeepsErrorsAttached(t *testing.T) {
	ctx := context.Background()
	d := New(Options{})
	d.AddVariant()
	d.AddVariant()
	require.NoError(t, d.SetVariantField(0, "price", "10"))
	require.NoError(t, d.SetVariantField(1, "price", "0"))
	require.NoError(t, d.SetVariantField(2, "price", "12"))

	require.NoError(t, d.RemoveVariant(ctx, 1))

	errs := d.Errors()
	assert.NotContains(t, errs, "variant_0_price")
	assert.NotContains(t, errs, "variant_1_price")
	assert.Equal(t, "12", d.Form().Variants[1].Price)
	// les erreurs de la variante supprimée disparaissent, celles de la troisième restent
	assert.Equal(t, "Color is required", errs["variant_1_color"])
	assert.NotContains(t, errs, "variant_2_color")
}

func TestAddSizeRejectsCaseInsensitiveDuplicate(t *testing.T) {
	d := New(Options{})
	require.NoError(t, d.AddSizeToVariant(0, "M"))

	err := d.AddSizeToVariant(0, "m")

	var n *Notice
	require.ErrorAs(t, err, &n)
	assert.ErrorIs(t, err, ErrDuplicateSize)
	assert.Equal(t, "Size m already exists in this variant", n.Message)
	assert.Len(t, d.Form().Variants[0].Sizes, 1)
}

func TestAddSizeIgnoresBlankLabel(t *testing.T) {
	d := New(Options{})
	require.NoError(t, d.AddSizeToVariant(0, "  "))
	assert.Empty(t, d.Form().Variants[0].Sizes)
}

func TestRemoveSizeRecomputesSizeErrors(t *testing.T) {
	d := New(Options{})
	require.NoError(t, d.AddSizeToVariant(0, "M"))
	require.NoError(t, d.AddSizeToVariant(0, "L"))
	require.NoError(t, d.SetSizeStock(0, 0, "-1"))
	require.NoError(t, d.SetSizeStock(0, 1, "oops"))

	require.NoError(t, d.RemoveSizeFromVariant(0, 0))
	errs := d.Errors()
	assert.Equal(t, "Stock must be a non-negative number", errs["variant_0_size_0_stock"])
	assert.NotContains(t, errs, "variant_0_size_1_stock")
	assert.NotContains(t, errs, "variant_0_sizes")

	require.NoError(t, d.RemoveSizeFromVariant(0, 0))
	errs = d.Errors()
	assert.Equal(t, "At least one size is required", errs["variant_0_sizes"])
	assert.NotContains(t, errs, "variant_0_size_0_stock")
}

func TestSetSizeStockRevalidatesOnlyThatSize(t *testing.T) {
	d := New(Options{})
	require.NoError(t, d.AddSizeToVariant(0, "M"))
	require.NoError(t, d.AddSizeToVariant(0, "L"))

	require.NoError(t, d.SetSizeStock(0, 1, "-4"))

	errs := d.Errors()
	assert.Equal(t, map[string]string{"variant_0_size_1_stock": "Stock must be a non-negative number"}, errs)
	assert.ErrorIs(t, d.SetSizeStock(0, 7, "1"), ErrOutOfRange)
}

func TestUpdateFlowChecksVariantStock(t *testing.T) {
	d := Hydrate(&models.Product{ID: "p1", Variants: []models.ProductVariant{{}}}, Options{})
	require.NoError(t, d.AddSizeToVariant(0, "M"))
	assert.Equal(t, "At least one size must have valid stock", d.Errors()["variant_0_stock"])

	require.NoError(t, d.SetSizeStock(0, 0, "3"))
	assert.NotContains(t, d.Errors(), "variant_0_stock")
}

func TestSetCategoryRebuildsSizesKeepingStock(t *testing.T) {
	d := New(Options{})
	d.SetCategory("shirts", []string{"S", "M"})
	require.NoError(t, d.SetSizeStock(0, 1, "7"))
	require.NoError(t, d.SetSizeStock(0, 0, "-1"))

	d.SetCategory("tees", []string{"M", "L"})

	sizes := d.Form().Variants[0].Sizes
	require.Len(t, sizes, 2)
	assert.Equal(t, SizeStock{ID: sizes[0].ID, Size: "M", Stock: "7"}, sizes[0])
	assert.Equal(t, "L", sizes[1].Size)
	assert.Empty(t, d.Errors(), "the dropped size takes its error with it")
	assert.Equal(t, []string{"M", "L"}, d.AvailableSizes())

	d.SetCategory("", nil)
	assert.Empty(t, d.Form().Variants[0].Sizes)
	assert.Equal(t, "Category is required", d.Errors()["category"])
	assert.Empty(t, d.AvailableSizes())
}

func TestSetVariantFieldUnknown(t *testing.T) {
	d := New(Options{})
	assert.True(t, errors.Is(d.SetVariantField(0, "weight", "1"), ErrUnknownField))
	assert.ErrorIs(t, d.SetVariantField(3, "price", "1"), ErrOutOfRange)
}

func TestUpdateFlowOffersPredefinedSizes(t *testing.T) {
	d := Hydrate(&models.Product{ID: "p1"}, Options{})
	assert.Equal(t, []string{"XS", "S", "M", "L", "XL", "2XL", "3XL", "4XL", "5XL"}, d.AvailableSizes())
}
