package catalog

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// EffectivePrice aplica el descuento porcentual al precio (servicio de dominio).
// PrecioEfectivo = Precio * (1 - Descuento/100), redondeado a 2 decimales (half-up).
// El descuento se acota a [0,100] para que un dato corrupto nunca produzca precios negativos.
func EffectivePrice(price decimal.Decimal, discount int) decimal.Decimal {
	d := decimal.NewFromInt(int64(clampDiscount(discount)))
	factor := decimal.NewFromInt(1).Sub(d.Div(hundred))
	return price.Mul(factor).Round(2)
}

func clampDiscount(d int) int {
	if d < 0 {
		return 0
	}
	if d > MaxDiscount {
		return MaxDiscount
	}
	return d
}
