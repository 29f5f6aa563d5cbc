package psychro

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seaLevelKPa = 101.325

func TestEnthalpy_ReferenceValue(t *testing.T) {
	h, err := Enthalpy(20, 50, seaLevelKPa)
	require.NoError(t, err)
	assert.InDelta(t, 38.6, h, 0.5)
}

func TestEnthalpy_StrictlyIncreasingInHumidity(t *testing.T) {
	for _, temp := range []float64{-10, 0, 15, 25, 40, 50} {
		prev := math.Inf(-1)
		for rh := 0.0; rh <= 100; rh += 5 {
			h, err := Enthalpy(temp, rh, seaLevelKPa)
			require.NoError(t, err, "t=%v rh=%v", temp, rh)
			assert.Greater(t, h, prev, "t=%v rh=%v", temp, rh)
			prev = h
		}
	}
}

func TestEnthalpy_DryAirIsSensibleHeatOnly(t *testing.T) {
	for _, temp := range []float64{-40, -10, 0, 12.5, 30, 80} {
		h, err := Enthalpy(temp, 0, seaLevelKPa)
		require.NoError(t, err)
		assert.InDelta(t, 1.006*temp, h, 1e-9)
	}
}

func TestSaturationVaporPressure(t *testing.T) {
	psat, err := SaturationVaporPressure(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.61078, psat, 1e-9)

	psat, err = SaturationVaporPressure(20)
	require.NoError(t, err)
	assert.InDelta(t, 2.338, psat, 0.01)

	_, err = SaturationVaporPressure(-237.3)
	require.ErrorIs(t, err, ErrTemperatureOutOfDomain)

	_, err = SaturationVaporPressure(-300)
	require.ErrorIs(t, err, ErrTemperatureOutOfDomain)

	_, err = SaturationVaporPressure(math.NaN())
	require.ErrorIs(t, err, ErrNonFinite)
}

func TestPartialVaporPressure(t *testing.T) {
	psat, err := SaturationVaporPressure(25)
	require.NoError(t, err)

	pv, err := PartialVaporPressure(25, 40)
	require.NoError(t, err)
	assert.InDelta(t, 0.4*psat, pv, 1e-12)

	_, err = PartialVaporPressure(25, 101)
	require.ErrorIs(t, err, ErrRelativeHumidityOutOfRange)

	_, err = PartialVaporPressure(25, -1)
	require.ErrorIs(t, err, ErrRelativeHumidityOutOfRange)
}

func TestHumidityRatio(t *testing.T) {
	w, err := HumidityRatio(20, 50, seaLevelKPa)
	require.NoError(t, err)
	assert.InDelta(t, 0.00726, w, 0.0001)

	t.Run("vapor pressure reaching atmospheric pressure is rejected", func(t *testing.T) {
		// psat(50 °C) is about 12.3 kPa
		_, err := HumidityRatio(50, 100, 10)
		require.ErrorIs(t, err, ErrVaporPressureExceedsAtmospheric)
	})

	t.Run("non-positive pressure is rejected", func(t *testing.T) {
		_, err := HumidityRatio(20, 50, 0)
		require.ErrorIs(t, err, ErrNonPositivePressure)
		_, err = HumidityRatio(20, 50, -5)
		require.ErrorIs(t, err, ErrNonPositivePressure)
	})

	t.Run("infinite pressure is rejected", func(t *testing.T) {
		_, err := HumidityRatio(20, 50, math.Inf(1))
		require.ErrorIs(t, err, ErrNonFinite)
	})
}

func TestDewPoint(t *testing.T) {
	dp, err := DewPoint(20, 50)
	require.NoError(t, err)
	assert.InDelta(t, 9.3, dp, 0.1)

	t.Run("never above dry bulb below saturation", func(t *testing.T) {
		for _, temp := range []float64{-10, 0, 10, 20, 35, 50} {
			for rh := 1.0; rh < 100; rh += 7 {
				dp, err := DewPoint(temp, rh)
				require.NoError(t, err)
				assert.LessOrEqual(t, dp, temp, "t=%v rh=%v", temp, rh)
			}
		}
	})

	t.Run("equals dry bulb at saturation", func(t *testing.T) {
		for _, temp := range []float64{-10, 0, 21.5, 50} {
			dp, err := DewPoint(temp, 100)
			require.NoError(t, err)
			assert.InDelta(t, temp, dp, 1e-9)
		}
	})

	t.Run("zero humidity is rejected", func(t *testing.T) {
		dp, err := DewPoint(20, 0)
		require.ErrorIs(t, err, ErrDewPointUndefined)
		assert.False(t, math.IsInf(dp, 0))
		assert.False(t, math.IsNaN(dp))
	})

	t.Run("temperature outside the Magnus domain is rejected", func(t *testing.T) {
		_, err := DewPoint(-240, 50)
		require.ErrorIs(t, err, ErrTemperatureOutOfDomain)
	})
}

func TestCompute(t *testing.T) {
	st, err := Compute(20, 50, seaLevelKPa)
	require.NoError(t, err)
	assert.Equal(t, 20.0, st.TemperatureC)
	assert.Equal(t, 50.0, st.RelativeHumidityPct)
	assert.InDelta(t, 38.6, st.EnthalpyKJPerKg, 0.5)
	require.NotNil(t, st.DewPointC)
	assert.InDelta(t, 9.3, *st.DewPointC, 0.1)
	assert.Empty(t, st.DewPointReason)
	assert.InDelta(t, st.SaturationPressureKPa/2, st.VaporPressureKPa, 1e-12)
}

func TestCompute_DryAirOmitsDewPoint(t *testing.T) {
	st, err := Compute(20, 0, seaLevelKPa)
	require.NoError(t, err)
	assert.Nil(t, st.DewPointC)
	assert.Equal(t, "dew_point_undefined", st.DewPointReason)
	assert.Equal(t, 0.0, st.HumidityRatioKgPerKg)
	assert.InDelta(t, 1.006*20, st.EnthalpyKJPerKg, 1e-9)
}

func TestCompute_DomainErrorsStillFail(t *testing.T) {
	_, err := Compute(20, 120, seaLevelKPa)
	require.ErrorIs(t, err, ErrRelativeHumidityOutOfRange)
}

func TestReason(t *testing.T) {
	_, err := DewPoint(20, 0)
	assert.Equal(t, "dew_point_undefined", Reason(err))
	assert.True(t, IsDomainError(err))

	_, err = HumidityRatio(50, 100, 10)
	assert.Equal(t, "vapor_pressure_exceeds_atmospheric", Reason(err))

	assert.Equal(t, "other", Reason(assert.AnError))
	assert.False(t, IsDomainError(nil))
	assert.False(t, IsDomainError(assert.AnError))
}
