package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/brgy-records/apiserver/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWriteXLSXBusinessPermits(t *testing.T) {
	tin := "123-456-789"
	permits := []types.BusinessPermit{{
		ID:               7,
		ControlNumber:    "BP-2024-0A1B2C3D",
		ApplicationType:  types.ApplicationNew,
		BusinessName:     "Aling Nena Sari-Sari Store",
		NatureOfBusiness: "Retail",
		BusinessAddress:  "Purok 3",
		ProprietorName:   "Nena Santos",
		TIN:              &tin,
		AmountPaid:       decimal.RequireFromString("500.00"),
		ValidUntil:       types.NewDate(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)),
	}}

	data, err := WriteXLSX(BusinessPermits(permits))
	require.NoError(t, err)

	f := openWorkbook(t, data)
	assert.Equal(t, []string{"Business Permits"}, f.GetSheetList())

	rows, err := f.GetRows("Business Permits")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Control Number", rows[0][1])
	assert.Equal(t, "BP-2024-0A1B2C3D", rows[1][1])
	assert.Equal(t, "Aling Nena Sari-Sari Store", rows[1][3])
	assert.Equal(t, "123-456-789", rows[1][8])
	assert.Equal(t, "", rows[1][9])

	validUntil, err := f.GetCellValue("Business Permits", "N2")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", validUntil)
}

func TestWriteXLSXEmptySheetKeepsHeader(t *testing.T) {
	data, err := WriteXLSX(Inhabitants(nil))
	require.NoError(t, err)

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Inhabitants")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Household No", rows[0][1])
	assert.Len(t, rows[0], len(Inhabitants(nil).Columns))
}

func TestKasambahaySheet(t *testing.T) {
	sheet := Kasambahay([]types.Kasambahay{{
		ID:                    1,
		FirstName:             "Maria",
		LastName:              "Reyes",
		EmploymentArrangement: types.ArrangementLiveIn,
		MonthlySalary:         decimal.RequireFromString("12500.50"),
	}})
	require.Len(t, sheet.Rows, 1)
	require.Len(t, sheet.Rows[0], len(sheet.Columns))
	assert.Equal(t, "Maria Reyes", sheet.Rows[0][1])
	assert.Equal(t, 12500.5, sheet.Rows[0][10])
	assert.Nil(t, sheet.Rows[0][16])
}

func TestResidentDetailsSheetColumnsMatchRows(t *testing.T) {
	certificate := types.CertificateIndigency
	sheet := ResidentDetails([]types.ResidentDetails{{ID: 3, FirstName: "Juan", LastName: "Dela Cruz", CertificateType: &certificate, Tenant: true}})
	require.Len(t, sheet.Rows[0], len(sheet.Columns))
	assert.Equal(t, "indigency", sheet.Rows[0][12])
	assert.Equal(t, "Yes", sheet.Rows[0][14])
}

func TestFilename(t *testing.T) {
	on := types.NewDate(time.Date(2024, 10, 17, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, "rbi-records-2024-10-17.xlsx", Filename(types.RecordInhabitant, on))
}
