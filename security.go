package nitf

// SecurityGroup holds the security fields shared by file headers and
// subheaders. Fields absent from a version stay empty.
type SecurityGroup struct {
	Classification              string // CLAS
	ClassificationSystem        string // CLSY (2.1)
	Codewords                   string // CODE
	ControlAndHandling          string // CTLH
	ReleasingInstructions       string // REL
	DeclassificationType        string // DCTP (2.1)
	DeclassificationDate        string // DCDT (2.1)
	DeclassificationExemption   string // DCXM (2.1)
	Downgrade                   string // DWNG (2.0) or DG (2.1)
	DowngradeDate               string // DGDT (2.1)
	ClassificationText          string // CLTX (2.1)
	ClassificationAuthorityType string // CATP (2.1)
	ClassificationAuthority     string // CAUT
	ClassificationReason        string // CRSN (2.1)
	SourceDate                  string // SRDT (2.1)
	ControlNumber               string // CTLN
	DowngradingEvent            string // DEVT (2.0), only when DWNG is 999998.
}

func (s *SecurityGroup) field(name string) *string {
	switch name {
	case "CLAS":
		return &s.Classification
	case "CLSY":
		return &s.ClassificationSystem
	case "CODE":
		return &s.Codewords
	case "CTLH":
		return &s.ControlAndHandling
	case "REL":
		return &s.ReleasingInstructions
	case "DCTP":
		return &s.DeclassificationType
	case "DCDT":
		return &s.DeclassificationDate
	case "DCXM":
		return &s.DeclassificationExemption
	case "DWNG", "DG":
		return &s.Downgrade
	case "DGDT":
		return &s.DowngradeDate
	case "CLTX":
		return &s.ClassificationText
	case "CATP":
		return &s.ClassificationAuthorityType
	case "CAUT":
		return &s.ClassificationAuthority
	case "CRSN":
		return &s.ClassificationReason
	case "SRDT":
		return &s.SourceDate
	case "CTLN":
		return &s.ControlNumber
	case "DEVT":
		return &s.DowngradingEvent
	}
	return nil
}

// present reports whether the gated field f is present given the fields
// already read.
func (s *SecurityGroup) present(f fieldSpec) bool {
	if f.gate == "" {
		return true
	}
	return *s.field(f.gate) == f.gateValue
}

// readSecurity reads the security group. prefix is "FS" for file headers
// and "IS" for image subheaders.
func (fr *fieldReader) readSecurity(l *layout, prefix string) (s SecurityGroup, err error) {
	fr.enter("securityGroup", -1)
	for _, f := range l.security {
		if !s.present(f) {
			continue
		}
		if *s.field(f.name), err = fr.readString(prefix+f.name, f.width); err != nil {
			return
		}
	}
	return
}
