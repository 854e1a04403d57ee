package validation

import (
	"io"

	"github.com/brgy-records/apiserver/types"
)

// CertificateRequest issues a certificate from a stored record, or from the
// supplied values alone when no source is given.
type CertificateRequest struct {
	Source        string            `json:"source" validate:"required_with=ID,omitempty,oneof=rbi personal"`
	ID            int               `json:"id" validate:"required_with=Source,omitempty,min=1"`
	ControlNumber string            `json:"control_number" validate:"omitempty,max=50,control_number"`
	Values        map[string]string `json:"values" validate:"dive,keys,max=50,endkeys,max=255"`
}

// SourceType returns the record type of the source, or "" when none was given.
func (c CertificateRequest) SourceType() types.RecordType {
	recordType, _ := types.ParseRecordType(c.Source)
	return recordType
}

func (v *Validator) Certificate(r io.Reader) (CertificateRequest, error) {
	var in CertificateRequest
	if err := v.run(r, &in); err != nil {
		return CertificateRequest{}, err
	}
	if in.Values == nil {
		in.Values = map[string]string{}
	}
	return in, nil
}

// BusinessPermitPDF reads the flat field map posted to the business-permit
// PDF route.
func (v *Validator) BusinessPermitPDF(r io.Reader) (map[string]string, error) {
	var in struct {
		Values map[string]string `json:"values" validate:"dive,keys,max=50,endkeys,max=255"`
	}
	errs := &Errors{}
	if fatal := decode(r, &in.Values, errs); fatal {
		return nil, errs
	}
	v.collect(&in, errs)
	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return in.Values, nil
}
