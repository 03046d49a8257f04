package scenario

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/fundflow-backend/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLoad_SingleDuplex(t *testing.T) {
	input, err := Load(filepath.Join("testdata", "duplex.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "single duplex", input.Name)
	require.NotNil(t, input.Assumptions)
	a := input.Assumptions
	assert.True(t, a.InterestRate.Equal(d("0.046")), "quoted decimals parse")
	assert.True(t, a.LTV.Equal(d("0.75")))
	assert.True(t, a.ExpenseGrowth.IsZero())
	assert.Equal(t, 25, a.AmortizationPeriods)
	assert.Equal(t, 5, a.HoldPeriods)
	assert.Equal(t, domain.CatchUpProfitToDate, a.CatchUp)
	assert.True(t, a.LPCapital.Equal(d("131250")))
	require.NoError(t, a.Validate())

	require.Len(t, input.Properties, 1)
	p := input.Properties[0]
	assert.Equal(t, "Hamilton duplex", p.Name)
	assert.True(t, p.PurchasePrice.Equal(d("700000")))
	assert.Equal(t, 12, p.RentPaymentsPerPeriod)
	assert.Nil(t, p.Assumptions, "inherits the scenario set at run time")
}

func TestLoad_PropertyOverrides(t *testing.T) {
	input, err := Load(filepath.Join("testdata", "portfolio.yaml"))
	require.NoError(t, err)
	require.Len(t, input.Properties, 2)

	first := input.Properties[0]
	assert.Equal(t, uuid.MustParse("6f1c2a8e-3b7d-4d2a-9e55-0c6a1f3b9d10"), first.ID)

	fourplex := input.Properties[1]
	assert.Equal(t, 4, fourplex.Units)
	assert.Equal(t, 2, fourplex.Count)
	assert.Equal(t, 2, fourplex.AcquisitionPeriod)
	require.NotNil(t, fourplex.Assumptions)
	assert.True(t, fourplex.Assumptions.LTV.Equal(d("0.65")))
	assert.True(t, fourplex.Assumptions.InterestRate.Equal(d("0.052")))
	assert.Equal(t, 6, fourplex.Assumptions.HoldPeriods, "a property may hold longer or shorter than the fund default")
	// untouched keys come from the scenario set
	assert.Equal(t, 12, fourplex.Assumptions.PaymentsPerPeriod)
	assert.True(t, fourplex.Assumptions.VacancyRate.Equal(d("0.05")))

	// the scenario set itself is not modified by the override
	assert.True(t, input.Assumptions.LTV.Equal(d("0.75")))
	assert.Equal(t, 7, input.Assumptions.HoldPeriods)
}

func TestParse_PresetOnly(t *testing.T) {
	input, err := Parse([]byte(`
name: from preset
preset: conservative
properties:
  - name: a
    purchase_price: 500000
    starting_rent: 3000
`))

	require.NoError(t, err)
	assert.Equal(t, "conservative", input.Preset)
	assert.Nil(t, input.Assumptions)
	assert.Len(t, input.Properties, 1)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool
		errMsg  string
	}{
		{
			name:   "unknown key",
			yaml:   "name: x\nvacancy: 0.05\n",
			errMsg: "vacancy",
		},
		{
			name:   "not a number",
			yaml:   "assumptions:\n  ltv: lots\n",
			errMsg: "lots",
		},
		{
			name:    "bad property id",
			yaml:    "assumptions:\n  ltv: 0.5\nproperties:\n  - name: a\n    id: nope\n",
			invalid: true,
			errMsg:  "id",
		},
		{
			name:    "override without scenario assumptions",
			yaml:    "preset: conservative\nproperties:\n  - name: a\n    assumptions:\n      ltv: 0.5\n",
			invalid: true,
			errMsg:  "assumptions",
		},
		{
			name:    "fund-level management fee rate on a property",
			yaml:    "assumptions:\n  ltv: 0.5\nproperties:\n  - name: a\n    assumptions:\n      hold_periods: 9\n      management_fee_rate: 0.5\n",
			invalid: true,
			errMsg:  "management_fee_rate",
		},
		{
			name:    "fund-level preferred rate on a property",
			yaml:    "assumptions:\n  ltv: 0.5\nproperties:\n  - name: a\n    assumptions:\n      hold_periods: 9\n      preferred_rate: 0.1\n",
			invalid: true,
			errMsg:  "preferred_rate",
		},
		{
			name:    "fund-level promote rate on a property",
			yaml:    "assumptions:\n  ltv: 0.5\nproperties:\n  - name: a\n    assumptions:\n      hold_periods: 9\n      promote_rate: 0.3\n",
			invalid: true,
			errMsg:  "promote_rate",
		},
		{
			name:    "fund-level catch up on a property",
			yaml:    "assumptions:\n  ltv: 0.5\nproperties:\n  - name: a\n    assumptions:\n      hold_periods: 9\n      catch_up: none\n",
			invalid: true,
			errMsg:  "catch_up",
		},
		{
			name:    "fund-level lp capital on a property",
			yaml:    "assumptions:\n  ltv: 0.5\nproperties:\n  - name: a\n    assumptions:\n      hold_periods: 9\n      lp_capital: 1\n",
			invalid: true,
			errMsg:  "lp_capital",
		},
		{
			name:    "fund-level gp capital on a property",
			yaml:    "assumptions:\n  ltv: 0.5\nproperties:\n  - name: a\n    assumptions:\n      hold_periods: 9\n      gp_capital: 1\n",
			invalid: true,
			errMsg:  "gp_capital",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, tt.invalid, errors.Is(err, domain.ErrInvalidInput))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario")
}
