package inventory

import "github.com/shopspring/decimal"

// moneyPlaces decimales con los que se guardan precios y costos.
const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// taxMultiplier devuelve 1 + rate/100.
func taxMultiplier(rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Add(rate.Div(hundred))
}

// WithTax calcula el importe con impuesto a partir del importe sin impuesto.
func WithTax(net, rate decimal.Decimal) decimal.Decimal {
	return net.Mul(taxMultiplier(rate)).Round(moneyPlaces)
}

// WithoutTax calcula el importe sin impuesto a partir del importe con impuesto.
// Para 23 %: 123 / 1.23 = 100.
func WithoutTax(gross, rate decimal.Decimal) decimal.Decimal {
	return gross.Div(taxMultiplier(rate)).Round(moneyPlaces)
}

// TaxAmount impuesto contenido en un importe neto.
func TaxAmount(net, rate decimal.Decimal) decimal.Decimal {
	return WithTax(net, rate).Sub(net.Round(moneyPlaces))
}

// PricePair importe sin y con impuesto que siempre viajan juntos.
type PricePair struct {
	Net   decimal.Decimal
	Gross decimal.Decimal
}

// ResolvePair recalcula el par a partir del campo que se haya informado.
// Si viene el neto manda el neto; si solo viene el bruto se deriva el neto.
// Sin ninguno de los dos se recalcula el bruto desde current.Net (p.ej. cambio de tasa).
func ResolvePair(net, gross *decimal.Decimal, rate decimal.Decimal, current PricePair) PricePair {
	switch {
	case net != nil:
		n := net.Round(moneyPlaces)
		return PricePair{Net: n, Gross: WithTax(n, rate)}
	case gross != nil:
		g := gross.Round(moneyPlaces)
		return PricePair{Net: WithoutTax(g, rate), Gross: g}
	default:
		n := current.Net.Round(moneyPlaces)
		return PricePair{Net: n, Gross: WithTax(n, rate)}
	}
}

// Margin margen porcentual sobre el precio de venta con impuesto:
// (venta_con_iva - compra_con_iva) / venta_con_iva * 100. Cero si no hay precio.
func Margin(priceWithTax, costWithTax decimal.Decimal) decimal.Decimal {
	if priceWithTax.IsZero() {
		return decimal.Zero
	}
	return priceWithTax.Sub(costWithTax).Div(priceWithTax).Mul(hundred)
}

// ValidTaxRate la tasa debe estar entre 0 y 100 inclusive.
func ValidTaxRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}
