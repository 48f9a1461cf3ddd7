package currency

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/money"
)

// Currency is the API model for a supported currency.
type Currency struct {
	Code           string `json:"code" doc:"ISO 4217 code"`
	Name           string `json:"name" doc:"English name"`
	DecimalPlaces  int32  `json:"decimalPlaces" doc:"Digits after the decimal point; amounts are stored in units of 10^-decimalPlaces"`
	Symbol         string `json:"symbol" doc:"Display symbol"`
	SymbolPosition string `json:"symbolPosition" enum:"before,after" doc:"Which side of the number the symbol goes"`
	Locale         string `json:"locale" doc:"BCP 47 locale used for formatting"`
}

// ListCurrenciesOutput is the Huma output for listing currencies.
type ListCurrenciesOutput struct {
	Body struct {
		Currencies []Currency `json:"currencies" doc:"Supported currencies ordered by code"`
	}
}

// ListCurrenciesHandler handles GET /v1/currencies.
type ListCurrenciesHandler struct {
	Currencies func() []money.Currency
}

func NewListCurrenciesHandler() *ListCurrenciesHandler {
	return &ListCurrenciesHandler{Currencies: money.Currencies}
}

// Register registers the list currencies endpoint with the Huma API.
func (h *ListCurrenciesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-currencies",
		Method:      http.MethodGet,
		Path:        "/v1/currencies",
		Summary:     "List currencies",
		Tags:        []string{"Currencies"},
	}, h.handle)
}

func (h *ListCurrenciesHandler) handle(_ context.Context, _ *struct{}) (*ListCurrenciesOutput, error) {
	currencies := h.Currencies()

	out := &ListCurrenciesOutput{}
	out.Body.Currencies = make([]Currency, len(currencies))
	for i, c := range currencies {
		out.Body.Currencies[i] = Currency{
			Code:           c.Code,
			Name:           c.Name,
			DecimalPlaces:  c.DecimalPlaces,
			Symbol:         c.Symbol,
			SymbolPosition: string(c.SymbolPosition),
			Locale:         c.Locale,
		}
	}
	return out, nil
}
