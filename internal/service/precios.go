package service

// precios.go — pricing pipeline and invoice decomposition.
//
// Pipeline order is fixed: original subtotal → promotion discounts →
// delivery-mode policy (take-away flat discount XOR delivery surcharge) →
// final total, clamped at zero. The stored total is the single authoritative
// amount; DescomponerTotal only reconstructs a display breakdown from it and
// must never be treated as a second calculation of business truth.

import (
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PoliticaPrecios carries the delivery-mode pricing knobs.
type PoliticaPrecios struct {
	// DescuentoTakeAway is a rate (0.10 = 10%) applied to the post-promotion
	// subtotal of take-away orders.
	DescuentoTakeAway decimal.Decimal
	// RecargoDelivery is a fixed surcharge added to delivery orders.
	RecargoDelivery decimal.Decimal
}

// LineaCotizada is one order line flowing through the pipeline. Before
// promotion evaluation only Cantidad/PrecioUnitario are set; the evaluator
// fills Descuento, Subtotal and Leyenda.
type LineaCotizada struct {
	ArticuloID     uuid.UUID
	Denominacion   string
	Cantidad       int
	PrecioUnitario decimal.Decimal

	// PromocionSolicitadaID is the per-line promotion the client selected,
	// if any. Inapplicable selections degrade silently to no discount.
	PromocionSolicitadaID *uuid.UUID

	Descuento decimal.Decimal
	Subtotal  decimal.Decimal // final: Cantidad×PrecioUnitario − Descuento
	// PromocionID references the promotion that actually produced the
	// discount (per-line one wins over the grouped one for attribution).
	PromocionID *uuid.UUID
	Leyenda     string
	Nota        string
}

// SubtotalOriginal is the pre-discount amount of the line.
func (l *LineaCotizada) SubtotalOriginal() decimal.Decimal {
	return l.PrecioUnitario.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// Cotizacion is the priced order snapshot produced by CalcularTotales.
type Cotizacion struct {
	Lineas               []LineaCotizada
	SubtotalOriginal     decimal.Decimal
	DescuentoPromociones decimal.Decimal
	// SubtotalConPromos = SubtotalOriginal − DescuentoPromociones.
	SubtotalConPromos decimal.Decimal
	DescuentoTakeAway decimal.Decimal // flat amount, take-away only
	GastosEnvio       decimal.Decimal // delivery only
	Total             decimal.Decimal
}

// redondear applies the house rounding rule: two decimals, half up.
func redondear(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// toleranciaCentavo is the verification tolerance for Σ parts ≈ whole checks.
var toleranciaCentavo = decimal.NewFromFloat(0.01)

// CalcularTotales runs the delivery-mode policy over already-evaluated lines
// (Descuento/Subtotal filled by the promotion evaluator) and produces the
// authoritative total.
func CalcularTotales(tipoEnvio model.TipoEnvio, lineas []LineaCotizada, pol PoliticaPrecios) Cotizacion {
	cot := Cotizacion{
		Lineas:               lineas,
		SubtotalOriginal:     decimal.Zero,
		DescuentoPromociones: decimal.Zero,
		DescuentoTakeAway:    decimal.Zero,
		GastosEnvio:          decimal.Zero,
	}
	for i := range lineas {
		cot.SubtotalOriginal = cot.SubtotalOriginal.Add(lineas[i].SubtotalOriginal())
		cot.DescuentoPromociones = cot.DescuentoPromociones.Add(lineas[i].Descuento)
	}
	cot.SubtotalConPromos = cot.SubtotalOriginal.Sub(cot.DescuentoPromociones)

	switch tipoEnvio {
	case model.EnvioTakeAway:
		cot.DescuentoTakeAway = redondear(cot.SubtotalConPromos.Mul(pol.DescuentoTakeAway))
		cot.Total = cot.SubtotalConPromos.Sub(cot.DescuentoTakeAway)
	case model.EnvioDelivery:
		cot.GastosEnvio = pol.RecargoDelivery
		cot.Total = cot.SubtotalConPromos.Add(cot.GastosEnvio)
	default:
		cot.Total = cot.SubtotalConPromos
	}

	// The total is authoritative and must never be negative.
	if cot.Total.IsNegative() {
		cot.Total = decimal.Zero
	}
	cot.Total = redondear(cot.Total)
	return cot
}

// Descomposicion is the display breakdown derived from a stored total.
type Descomposicion struct {
	Subtotal    decimal.Decimal
	Descuento   decimal.Decimal
	GastosEnvio decimal.Decimal
	Total       decimal.Decimal
}

// DescomponerTotal reconstructs the invoice display breakdown from the
// authoritative total and the known promotion discount.
//
// Delivery is exact: subtotal = total − surcharge + promo discount. Take-away
// inverts the flat discount (postPromo = total / (1 − rate)), which assumes a
// single flat layer applied after promotions — an approximation, not a
// guaranteed round-trip. A verification re-checks subtotal − descuento
// (+ envio) against the total and logs a warning on drift; it never raises,
// the stored total stays ground truth regardless.
func DescomponerTotal(tipoEnvio model.TipoEnvio, total, descuentoPromos decimal.Decimal, pol PoliticaPrecios) Descomposicion {
	d := Descomposicion{Total: total, GastosEnvio: decimal.Zero}

	switch tipoEnvio {
	case model.EnvioTakeAway:
		uno := decimal.NewFromInt(1)
		factor := uno.Sub(pol.DescuentoTakeAway)
		postPromo := total
		if !factor.IsZero() {
			postPromo = redondear(total.DivRound(factor, 6))
		}
		descuentoFlat := postPromo.Sub(total)
		d.Subtotal = postPromo.Add(descuentoPromos)
		d.Descuento = descuentoFlat.Add(descuentoPromos)
	case model.EnvioDelivery:
		d.GastosEnvio = pol.RecargoDelivery
		d.Subtotal = total.Sub(pol.RecargoDelivery).Add(descuentoPromos)
		d.Descuento = descuentoPromos
	default:
		d.Subtotal = total.Add(descuentoPromos)
		d.Descuento = descuentoPromos
	}

	reconstruido := d.Subtotal.Sub(d.Descuento).Add(d.GastosEnvio)
	if reconstruido.Sub(total).Abs().GreaterThan(toleranciaCentavo) {
		log.Warn().
			Str("tipo_envio", string(tipoEnvio)).
			Str("total", total.String()).
			Str("reconstruido", reconstruido.String()).
			Msg("descomposicion de factura no cierra contra el total almacenado")
	}
	return d
}
