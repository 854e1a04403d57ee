// Package export writes record listings as XLSX workbooks.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/brgy-records/apiserver/types"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column is one spreadsheet column.
type Column struct {
	Header string
	Width  float64
}

// Sheet is a single worksheet with a frozen header row.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// WriteXLSX renders sheet as a workbook. Nil cells are left empty.
func WriteXLSX(sheet Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet.Name)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet.Name != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("delete default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, column := range sheet.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet.Name, cell, column.Header); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet.Name, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("set header style: %w", err)
		}
		if column.Width > 0 {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return nil, err
			}
			if err := f.SetColWidth(sheet.Name, name, name, column.Width); err != nil {
				return nil, fmt.Errorf("set column width: %w", err)
			}
		}
	}

	for r, row := range sheet.Rows {
		for c, value := range row {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(sheet.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the attachment name for an export of recordType.
func Filename(recordType types.RecordType, on types.Date) string {
	return fmt.Sprintf("%s-records-%s.xlsx", recordType, on)
}

func Inhabitants(rows []types.Inhabitant) Sheet {
	sheet := Sheet{
		Name: "Inhabitants",
		Columns: []Column{
			{"ID", 8}, {"Household No", 14}, {"Last Name", 18}, {"First Name", 18}, {"Middle Name", 16},
			{"Suffix", 8}, {"Address", 30}, {"Purok", 10}, {"Birth Date", 12}, {"Birth Place", 20},
			{"Sex", 8}, {"Civil Status", 12}, {"Citizenship", 12}, {"Occupation", 18},
			{"Educational Attainment", 20}, {"Contact Number", 16}, {"Relationship to Head", 18},
			{"Registered Voter", 10}, {"Housing Status", 14}, {"Septic Tank", 10}, {"Date Accomplished", 14},
		},
	}
	for _, i := range rows {
		sheet.Rows = append(sheet.Rows, []any{
			i.ID, i.HouseholdNo, i.LastName, i.FirstName, str(i.MiddleName),
			str(i.Suffix), i.Address, str(i.Purok), date(i.BirthDate), str(i.BirthPlace),
			i.Sex, i.CivilStatus, i.Citizenship, str(i.Occupation),
			str(i.EducationalAttainment), str(i.ContactNumber), i.RelationshipToHead,
			yesNo(i.RegisteredVoter), str(i.HousingStatus), str(i.SepticTank), date(i.DateAccomplished),
		})
	}
	return sheet
}

func ResidentDetails(rows []types.ResidentDetails) Sheet {
	sheet := Sheet{
		Name: "Personal Details",
		Columns: []Column{
			{"ID", 8}, {"Name", 30}, {"Age", 6}, {"Gender", 8}, {"Civil Status", 12},
			{"Date of Birth", 12}, {"Address", 30}, {"Contact Number", 16}, {"Email", 24},
			{"Employment Status", 16}, {"Occupation", 18}, {"Years Residing", 10},
			{"Certificate Type", 16}, {"Purpose", 24}, {"Tenant", 8}, {"House Owner", 20},
			{"Submitted", 20},
		},
	}
	for _, r := range rows {
		var certificateType any
		if r.CertificateType != nil {
			certificateType = string(*r.CertificateType)
		}
		var yearsResiding any
		if r.YearsResiding != nil {
			yearsResiding = *r.YearsResiding
		}
		sheet.Rows = append(sheet.Rows, []any{
			r.ID, r.FullName(), r.Age, r.Gender, r.CivilStatus,
			date(r.DateOfBirth), r.Address, str(r.ContactNumber), str(r.Email),
			str(r.EmploymentStatus), str(r.Occupation), yearsResiding,
			certificateType, str(r.Purpose), yesNo(r.Tenant), str(r.HouseOwnerName),
			timestamp(r.CreatedAt),
		})
	}
	return sheet
}

func Kasambahay(rows []types.Kasambahay) Sheet {
	sheet := Sheet{
		Name: "Kasambahay",
		Columns: []Column{
			{"ID", 8}, {"Name", 30}, {"Sex", 8}, {"Age", 6}, {"Civil Status", 12}, {"Address", 30},
			{"Employer", 24}, {"Employer Address", 30}, {"Nature of Work", 18}, {"Arrangement", 12},
			{"Monthly Salary", 14}, {"SSS No", 16}, {"PhilHealth No", 16}, {"Pag-IBIG No", 16},
			{"Emergency Contact", 24}, {"Emergency Number", 16}, {"Registered", 20},
		},
	}
	for _, k := range rows {
		sheet.Rows = append(sheet.Rows, []any{
			k.ID, k.FullName(), k.Sex, k.Age, k.CivilStatus, k.Address,
			k.EmployerName, k.EmployerAddress, k.NatureOfWork, k.EmploymentArrangement,
			amount(k.MonthlySalary), str(k.SSSNumber), str(k.PhilHealthNumber), str(k.PagIBIGNumber),
			k.EmergencyContactName, k.EmergencyContactNumber, timestamp(k.CreatedAt),
		})
	}
	return sheet
}

func BusinessPermits(rows []types.BusinessPermit) Sheet {
	sheet := Sheet{
		Name: "Business Permits",
		Columns: []Column{
			{"ID", 8}, {"Control Number", 20}, {"Application", 10}, {"Business Name", 26}, {"Trade Name", 20},
			{"Nature of Business", 20}, {"Business Address", 30}, {"Proprietor", 24}, {"TIN", 16},
			{"Capitalization", 14}, {"Amount Paid", 12}, {"Date Paid", 12}, {"OR Number", 14},
			{"Valid Until", 12},
		},
	}
	for _, b := range rows {
		var capitalization any
		if b.Capitalization.Valid {
			capitalization = amount(b.Capitalization.Decimal)
		}
		sheet.Rows = append(sheet.Rows, []any{
			b.ID, b.ControlNumber, b.ApplicationType, b.BusinessName, str(b.TradeName),
			b.NatureOfBusiness, b.BusinessAddress, b.ProprietorName, str(b.TIN),
			capitalization, amount(b.AmountPaid), date(b.DatePaid), str(b.ORNumber),
			date(b.ValidUntil),
		})
	}
	return sheet
}

func str(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

func date(d types.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format("2006-01-02 15:04:05")
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
