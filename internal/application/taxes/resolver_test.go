package taxes

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/knawat/mp-backend/internal/domain/order"
	"github.com/knawat/mp-backend/internal/domain/shared/valueobject"
	"github.com/knawat/mp-backend/internal/domain/store"
	"github.com/knawat/mp-backend/internal/domain/tax"
)

type MockTaxRepository struct {
	mock.Mock
}

func (m *MockTaxRepository) FindByCountryAndClass(ctx context.Context, country, class string) (*tax.Tax, error) {
	args := m.Called(ctx, country, class)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.Tax), args.Error(1)
}

type recordingNotifier struct {
	subjects []string
}

func (n *recordingNotifier) NotifyOperators(ctx context.Context, subject, body string) error {
	n.subjects = append(n.subjects, subject)
	return nil
}

// syncRunner runs side effects inline so tests can assert on them.
type syncRunner struct{}

func (syncRunner) Go(name string, fn func(context.Context) error) {
	_ = fn(context.Background())
}

func storeWithCountry(country string) *store.Store {
	return &store.Store{
		URL: "https://shop.example.com",
		Billing: valueobject.Address{
			FirstName: "Jane",
			LastName:  "Doe",
			Address1:  "1 Main St",
			Country:   country,
			Email:     "jane@example.com",
		},
	}
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("missing store address wins over everything", func(t *testing.T) {
		notifier := &recordingNotifier{}
		resolver := NewResolver(new(MockTaxRepository), []string{"TR"}, notifier, syncRunner{}, logger)

		// No tax class either; the address signal must take precedence.
		res, err := resolver.Resolve(ctx, &store.Store{URL: "https://shop.example.com"}, order.Item{SKU: "ABC123"})

		assert.NoError(t, err)
		assert.False(t, res.Applied())
		assert.Equal(t, order.CodeMissingStoreAddr, res.Code)
		assert.Equal(t, "Missing Store Address", res.Message)
		assert.Empty(t, notifier.subjects)
	})

	t.Run("country outside allow-list is tax free", func(t *testing.T) {
		resolver := NewResolver(new(MockTaxRepository), []string{"TR"}, &recordingNotifier{}, syncRunner{}, logger)

		res, err := resolver.Resolve(ctx, storeWithCountry("US"), order.Item{SKU: "ABC123", TaxClass: "standard"})

		assert.NoError(t, err)
		assert.False(t, res.Applied())
		assert.Equal(t, order.CodeNoTaxForCountry, res.Code)
	})

	t.Run("missing tax class notifies operators", func(t *testing.T) {
		notifier := &recordingNotifier{}
		resolver := NewResolver(new(MockTaxRepository), []string{"TR"}, notifier, syncRunner{}, logger)

		res, err := resolver.Resolve(ctx, storeWithCountry("TR"), order.Item{SKU: "ABC123"})

		assert.NoError(t, err)
		assert.Equal(t, order.CodeTaxMaybeLater, res.Code)
		assert.Equal(t, "Tax Maybe Applied Later", res.Message)
		assert.Len(t, notifier.subjects, 1)
	})

	t.Run("unlisted tax class notifies operators", func(t *testing.T) {
		repo := new(MockTaxRepository)
		repo.On("FindByCountryAndClass", ctx, "TR", "exotic").Return(nil, nil)
		notifier := &recordingNotifier{}
		resolver := NewResolver(repo, []string{"TR"}, notifier, syncRunner{}, logger)

		res, err := resolver.Resolve(ctx, storeWithCountry("TR"), order.Item{SKU: "ABC123", TaxClass: "exotic"})

		assert.NoError(t, err)
		assert.Equal(t, order.CodeTaxClassNotListed, res.Code)
		assert.Len(t, notifier.subjects, 1)
	})

	t.Run("match returns the tax row", func(t *testing.T) {
		repo := new(MockTaxRepository)
		row := &tax.Tax{ID: "tax-1", Country: "TR", Classes: []string{"standard"}, Percentage: decimal.NewFromInt(18)}
		repo.On("FindByCountryAndClass", ctx, "TR", "standard").Return(row, nil)
		resolver := NewResolver(repo, []string{"TR"}, &recordingNotifier{}, syncRunner{}, logger)

		res, err := resolver.Resolve(ctx, storeWithCountry("TR"), order.Item{SKU: "ABC123", TaxClass: "standard"})

		assert.NoError(t, err)
		assert.True(t, res.Applied())
		assert.Equal(t, "tax-1", res.Tax.ID)
	})

	t.Run("repository failure propagates", func(t *testing.T) {
		repo := new(MockTaxRepository)
		repo.On("FindByCountryAndClass", ctx, "TR", "standard").Return(nil, assert.AnError)
		resolver := NewResolver(repo, []string{"TR"}, &recordingNotifier{}, syncRunner{}, logger)

		_, err := resolver.Resolve(ctx, storeWithCountry("TR"), order.Item{SKU: "ABC123", TaxClass: "standard"})

		assert.Error(t, err)
	})
}
