package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/apierror"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/dto"
	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPromocionSvc(promos []*model.Promocion, articulos ...*model.Articulo) PromocionService {
	return NewPromocionService(newStubPromocionRepo(promos...), newStubArticuloRepo(articulos...))
}

func lineaDe(a *model.Articulo, cantidad int) LineaCotizada {
	return LineaCotizada{
		ArticuloID:     a.ID,
		Denominacion:   a.Denominacion,
		Cantidad:       cantidad,
		PrecioUnitario: a.PrecioVenta,
	}
}

func TestAplicarPromocionPorcentaje(t *testing.T) {
	hamburguesa := manufacturadoFixture("Hamburguesa completa", 1000)
	promo := promocionFixture("15% hamburguesas", model.DescuentoPorcentaje, 15, hamburguesa)
	svc := buildPromocionSvc([]*model.Promocion{promo})

	linea := lineaDe(hamburguesa, 2)
	linea.PromocionSolicitadaID = &promo.ID

	lineas, err := svc.AplicarPromociones(context.Background(), time.Now(), []LineaCotizada{linea}, nil)
	require.NoError(t, err)

	requireDecimal(t, "300", lineas[0].Descuento)
	requireDecimal(t, "1700", lineas[0].Subtotal)
	require.NotNil(t, lineas[0].PromocionID)
	assert.Equal(t, promo.ID, *lineas[0].PromocionID)
	assert.Contains(t, lineas[0].Leyenda, "15% hamburguesas")
}

func TestAplicarPromocionMontoFijoTopeaEnElSubtotal(t *testing.T) {
	gaseosa := insumoFixture("Gaseosa", 50, 100, 100, 300)
	promo := promocionFixture("Promo gaseosa", model.DescuentoMontoFijo, 800, gaseosa)
	svc := buildPromocionSvc([]*model.Promocion{promo})

	linea := lineaDe(gaseosa, 1)
	linea.PromocionSolicitadaID = &promo.ID

	lineas, err := svc.AplicarPromociones(context.Background(), time.Now(), []LineaCotizada{linea}, nil)
	require.NoError(t, err)

	// A fixed amount above the line never makes the subtotal negative.
	requireDecimal(t, "300", lineas[0].Descuento)
	requireDecimal(t, "0", lineas[0].Subtotal)
}

func TestAplicarPromocionDebajoDelMinimo(t *testing.T) {
	hamburguesa := manufacturadoFixture("Hamburguesa completa", 1000)
	promo := promocionFixture("3x hamburguesas", model.DescuentoPorcentaje, 20, hamburguesa)
	promo.CantidadMinima = 3
	svc := buildPromocionSvc([]*model.Promocion{promo})

	linea := lineaDe(hamburguesa, 2)
	linea.PromocionSolicitadaID = &promo.ID

	lineas, err := svc.AplicarPromociones(context.Background(), time.Now(), []LineaCotizada{linea}, nil)
	require.NoError(t, err)

	requireDecimal(t, "0", lineas[0].Descuento)
	requireDecimal(t, "2000", lineas[0].Subtotal)
	assert.Nil(t, lineas[0].PromocionID)
}

func TestAplicarPromocionDegradaSilenciosamente(t *testing.T) {
	hamburguesa := manufacturadoFixture("Hamburguesa completa", 1000)
	otra := manufacturadoFixture("Pizza", 1200)
	inactiva := promocionFixture("Inactiva", model.DescuentoPorcentaje, 50, hamburguesa)
	inactiva.Activa = false
	ajena := promocionFixture("Solo pizza", model.DescuentoPorcentaje, 50, otra)
	svc := buildPromocionSvc([]*model.Promocion{inactiva, ajena})

	inexistente := uuid.New()
	casos := []struct {
		nombre  string
		promoID uuid.UUID
	}{
		{"promocion_inexistente", inexistente},
		{"promocion_inactiva", inactiva.ID},
		{"promocion_de_otro_articulo", ajena.ID},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			linea := lineaDe(hamburguesa, 1)
			id := c.promoID
			linea.PromocionSolicitadaID = &id

			lineas, err := svc.AplicarPromociones(context.Background(), time.Now(), []LineaCotizada{linea}, nil)
			require.NoError(t, err)
			requireDecimal(t, "0", lineas[0].Descuento)
			requireDecimal(t, "1000", lineas[0].Subtotal)
		})
	}
}

func TestVigenciaPorHorario(t *testing.T) {
	hamburguesa := manufacturadoFixture("Hamburguesa completa", 1000)
	ahora := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	promo := promocionFixture("Happy hour", model.DescuentoPorcentaje, 10, hamburguesa)
	promo.FechaDesde = ahora.AddDate(0, 0, -5)
	promo.FechaHasta = ahora // date window is inclusive

	casos := []struct {
		nombre    string
		desde     string
		hasta     string
		descuento string
	}{
		{"dentro_de_la_ventana", "12:00", "18:00", "100"},
		{"limite_superior_inclusive", "12:00", "15:00", "100"},
		{"limite_inferior_inclusive", "15:00", "18:00", "100"},
		{"fuera_de_la_ventana", "16:00", "18:00", "0"},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			promo.HoraDesde = c.desde
			promo.HoraHasta = c.hasta
			svc := buildPromocionSvc([]*model.Promocion{promo})

			linea := lineaDe(hamburguesa, 1)
			linea.PromocionSolicitadaID = &promo.ID

			lineas, err := svc.AplicarPromociones(context.Background(), ahora, []LineaCotizada{linea}, nil)
			require.NoError(t, err)
			requireDecimal(t, c.descuento, lineas[0].Descuento)
		})
	}
}

func TestVigenciaPorFecha(t *testing.T) {
	hamburguesa := manufacturadoFixture("Hamburguesa completa", 1000)
	ahora := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	promo := promocionFixture("Vencida", model.DescuentoPorcentaje, 10, hamburguesa)
	promo.FechaDesde = ahora.AddDate(0, 0, -10)
	promo.FechaHasta = ahora.AddDate(0, 0, -1)
	svc := buildPromocionSvc([]*model.Promocion{promo})

	linea := lineaDe(hamburguesa, 1)
	linea.PromocionSolicitadaID = &promo.ID

	lineas, err := svc.AplicarPromociones(context.Background(), ahora, []LineaCotizada{linea}, nil)
	require.NoError(t, err)
	requireDecimal(t, "0", lineas[0].Descuento)
}

func TestPromocionAgrupadaReparteProporcional(t *testing.T) {
	a := manufacturadoFixture("Hamburguesa", 1000)
	b := manufacturadoFixture("Papas", 500)
	c := manufacturadoFixture("Gaseosa", 300)
	bundle := promocionFixture("Combo 10%", model.DescuentoPorcentaje, 10, a, b, c)
	svc := buildPromocionSvc([]*model.Promocion{bundle})

	lineas, err := svc.AplicarPromociones(context.Background(), time.Now(),
		[]LineaCotizada{lineaDe(a, 1), lineaDe(b, 1), lineaDe(c, 1)}, &bundle.ID)
	require.NoError(t, err)

	// base 1800, descuento total 180, repartido por subtotal original.
	requireDecimal(t, "100", lineas[0].Descuento)
	requireDecimal(t, "50", lineas[1].Descuento)
	requireDecimal(t, "30", lineas[2].Descuento)

	suma := lineas[0].Descuento.Add(lineas[1].Descuento).Add(lineas[2].Descuento)
	requireDecimal(t, "180", suma)
	for i := range lineas {
		assert.Contains(t, lineas[i].Leyenda, "Combo 10%")
	}
}

func TestPromocionAgrupadaUltimaLineaAbsorbeElRedondeo(t *testing.T) {
	a := manufacturadoFixture("A", 333.33)
	b := manufacturadoFixture("B", 333.33)
	c := manufacturadoFixture("C", 333.34)
	bundle := promocionFixture("Combo 10%", model.DescuentoPorcentaje, 10, a, b, c)
	svc := buildPromocionSvc([]*model.Promocion{bundle})

	lineas, err := svc.AplicarPromociones(context.Background(), time.Now(),
		[]LineaCotizada{lineaDe(a, 1), lineaDe(b, 1), lineaDe(c, 1)}, &bundle.ID)
	require.NoError(t, err)

	suma := lineas[0].Descuento.Add(lineas[1].Descuento).Add(lineas[2].Descuento)
	requireDecimal(t, "100", suma)
}

func TestPromocionAgrupadaRedondeoNuncaDescuentaNegativo(t *testing.T) {
	// Cuatro lineas iguales de $0.50 con un combo del 1%: el total es $0.02
	// pero cada parte redondea a $0.01, asi que las primeras tres ya superan
	// el total. La ultima linea queda en cero, nunca con descuento negativo.
	arts := []*model.Articulo{
		manufacturadoFixture("A", 0.50),
		manufacturadoFixture("B", 0.50),
		manufacturadoFixture("C", 0.50),
		manufacturadoFixture("D", 0.50),
	}
	bundle := promocionFixture("Combo 1%", model.DescuentoPorcentaje, 1, arts...)
	svc := buildPromocionSvc([]*model.Promocion{bundle})

	entrada := []LineaCotizada{
		lineaDe(arts[0], 1), lineaDe(arts[1], 1), lineaDe(arts[2], 1), lineaDe(arts[3], 1),
	}
	lineas, err := svc.AplicarPromociones(context.Background(), time.Now(), entrada, &bundle.ID)
	require.NoError(t, err)

	for i := range lineas {
		assert.False(t, lineas[i].Descuento.IsNegative(),
			"linea %d con descuento negativo: %s", i, lineas[i].Descuento)
		assert.True(t, lineas[i].Subtotal.LessThanOrEqual(lineas[i].SubtotalOriginal()),
			"linea %d con subtotal mayor al original", i)
	}
	requireDecimal(t, "0.01", lineas[0].Descuento)
	requireDecimal(t, "0", lineas[3].Descuento)
}

func TestPromocionAgrupadaMinimoSobreCantidadSumada(t *testing.T) {
	a := manufacturadoFixture("Hamburguesa", 1000)
	b := manufacturadoFixture("Papas", 500)
	bundle := promocionFixture("Combo x3", model.DescuentoPorcentaje, 10, a, b)
	bundle.CantidadMinima = 3
	svc := buildPromocionSvc([]*model.Promocion{bundle})

	// 1 + 2 = 3 unidades elegibles: alcanza el minimo aunque ninguna linea
	// lo alcance por si sola.
	lineas, err := svc.AplicarPromociones(context.Background(), time.Now(),
		[]LineaCotizada{lineaDe(a, 1), lineaDe(b, 2)}, &bundle.ID)
	require.NoError(t, err)
	requireDecimal(t, "100", lineas[0].Descuento)
	requireDecimal(t, "100", lineas[1].Descuento)

	// 1 + 1 = 2: por debajo del minimo, no aporta descuento.
	lineas, err = svc.AplicarPromociones(context.Background(), time.Now(),
		[]LineaCotizada{lineaDe(a, 1), lineaDe(b, 1)}, &bundle.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", lineas[0].Descuento)
	requireDecimal(t, "0", lineas[1].Descuento)
}

func TestPromocionAgrupadaSinLineasElegibles(t *testing.T) {
	a := manufacturadoFixture("Hamburguesa", 1000)
	otra := manufacturadoFixture("Pizza", 1200)
	bundle := promocionFixture("Combo pizza", model.DescuentoPorcentaje, 10, otra)
	svc := buildPromocionSvc([]*model.Promocion{bundle})

	lineas, err := svc.AplicarPromociones(context.Background(), time.Now(),
		[]LineaCotizada{lineaDe(a, 2)}, &bundle.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", lineas[0].Descuento)
}

func TestPromocionPorLineaMasAgrupadaConTope(t *testing.T) {
	a := manufacturadoFixture("Hamburguesa", 1000)
	porLinea := promocionFixture("Gratis", model.DescuentoMontoFijo, 1000, a)
	bundle := promocionFixture("Combo 10%", model.DescuentoPorcentaje, 10, a)
	svc := buildPromocionSvc([]*model.Promocion{porLinea, bundle})

	linea := lineaDe(a, 1)
	linea.PromocionSolicitadaID = &porLinea.ID

	lineas, err := svc.AplicarPromociones(context.Background(), time.Now(),
		[]LineaCotizada{linea}, &bundle.ID)
	require.NoError(t, err)

	// Ambas capas suman 1100 pero el descuento de la linea nunca supera su
	// subtotal original.
	requireDecimal(t, "1000", lineas[0].Descuento)
	requireDecimal(t, "0", lineas[0].Subtotal)
	assert.Equal(t, porLinea.ID, *lineas[0].PromocionID)
}

// ── Catalogo ──────────────────────────────────────────────────────────────────

func crearPromocionRequest(articuloID string) dto.CrearPromocionRequest {
	return dto.CrearPromocionRequest{
		Denominacion: "Promo de prueba",
		Tipo:         "porcentaje",
		Valor:        dec("15"),
		FechaDesde:   "2026-03-01",
		FechaHasta:   "2026-03-31",
		HoraDesde:    "11:00",
		HoraHasta:    "23:00",
		ArticuloIDs:  []string{articuloID},
	}
}

func TestCrearPromocion(t *testing.T) {
	a := manufacturadoFixture("Hamburguesa", 1000)
	svc := buildPromocionSvc(nil, a)

	resp, err := svc.Crear(context.Background(), crearPromocionRequest(a.ID.String()))
	require.NoError(t, err)
	assert.Equal(t, "Promo de prueba", resp.Denominacion)
	assert.True(t, resp.Activa)
	assert.Equal(t, 1, resp.CantidadMinima)
	assert.Equal(t, []string{a.ID.String()}, resp.ArticuloIDs)
}

func TestCrearPromocionValidaciones(t *testing.T) {
	a := manufacturadoFixture("Hamburguesa", 1000)

	casos := []struct {
		nombre string
		mutar  func(*dto.CrearPromocionRequest)
	}{
		{"fecha_desde_invalida", func(r *dto.CrearPromocionRequest) { r.FechaDesde = "01/03/2026" }},
		{"fechas_invertidas", func(r *dto.CrearPromocionRequest) { r.FechaHasta = "2026-02-01" }},
		{"horas_invertidas", func(r *dto.CrearPromocionRequest) { r.HoraDesde = "23:00"; r.HoraHasta = "11:00" }},
		{"porcentaje_mayor_a_cien", func(r *dto.CrearPromocionRequest) { r.Valor = dec("120") }},
		{"valor_negativo", func(r *dto.CrearPromocionRequest) { r.Valor = dec("-5") }},
		{"articulo_id_invalido", func(r *dto.CrearPromocionRequest) { r.ArticuloIDs = []string{"no-es-uuid"} }},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			svc := buildPromocionSvc(nil, a)
			req := crearPromocionRequest(a.ID.String())
			c.mutar(&req)
			_, err := svc.Crear(context.Background(), req)
			require.Error(t, err)
			assert.True(t, apierror.IsCode(err, apierror.CodeValidation), "error: %v", err)
		})
	}
}

func TestCrearPromocionArticuloInexistente(t *testing.T) {
	svc := buildPromocionSvc(nil)
	_, err := svc.Crear(context.Background(), crearPromocionRequest(uuid.NewString()))
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.CodeNotFound))
}

func TestCrearPromocionDuplicada(t *testing.T) {
	a := manufacturadoFixture("Hamburguesa", 1000)
	svc := buildPromocionSvc(nil, a)

	_, err := svc.Crear(context.Background(), crearPromocionRequest(a.ID.String()))
	require.NoError(t, err)

	_, err = svc.Crear(context.Background(), crearPromocionRequest(a.ID.String()))
	require.Error(t, err)
	assert.True(t, apierror.IsCode(err, apierror.CodeDuplicate))
}

func TestCrearPromocionFalloDePersistenciaNoEsDuplicado(t *testing.T) {
	a := manufacturadoFixture("Hamburguesa", 1000)
	repo := newStubPromocionRepo()
	repo.errCreate = errors.New("conexion perdida")
	svc := NewPromocionService(repo, newStubArticuloRepo(a))

	_, err := svc.Crear(context.Background(), crearPromocionRequest(a.ID.String()))
	require.Error(t, err)
	assert.False(t, apierror.IsCode(err, apierror.CodeDuplicate))
}

func TestDesactivarPromocion(t *testing.T) {
	a := manufacturadoFixture("Hamburguesa", 1000)
	promo := promocionFixture("Promo", model.DescuentoPorcentaje, 10, a)
	repo := newStubPromocionRepo(promo)
	svc := NewPromocionService(repo, newStubArticuloRepo(a))

	require.NoError(t, svc.Desactivar(context.Background(), promo.ID))
	assert.False(t, repo.promos[promo.ID].Activa)

	err := svc.Desactivar(context.Background(), uuid.New())
	assert.True(t, apierror.IsCode(err, apierror.CodeNotFound))
}
