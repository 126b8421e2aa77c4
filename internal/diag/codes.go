package diag

import (
	"fmt"
)

// Code identifies a diagnostic kind. Codes are banded by producer so the
// numeric form alone tells where a finding came from:
//
//	1000-1999  bundle loading (BND)
//	2000-2999  configuration (CFG)
//	3000-3999  ARC analysis (ARC)
//	6000-6999  observability (OBS)
type Code uint16

const (
	UnknownCode Code = 0

	// Bundle loading
	BndInfo           Code = 1000
	BndReadError      Code = 1001
	BndSchemaMismatch Code = 1002
	BndCorrupt        Code = 1003
	BndWriteError     Code = 1004

	// Configuration
	CfgInfo         Code = 2000
	CfgReadError    Code = 2001
	CfgParseError   Code = 2002
	CfgInvalidValue Code = 2003

	// ARC analysis
	ArcInfo           Code = 3000
	ArcDirectCycle    Code = 3001
	ArcIndirectCycle  Code = 3002
	ArcModuleHalted   Code = 3003
	ArcUnresolvedType Code = 3004

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown diagnostic",

	BndInfo:           "bundle information",
	BndReadError:      "cannot read module bundle",
	BndSchemaMismatch: "module bundle schema version mismatch",
	BndCorrupt:        "malformed module bundle",
	BndWriteError:     "cannot write module bundle",

	CfgInfo:         "configuration information",
	CfgReadError:    "cannot read configuration file",
	CfgParseError:   "malformed configuration file",
	CfgInvalidValue: "invalid configuration value",

	ArcInfo:           "ARC information",
	ArcDirectCycle:    "type contains itself",
	ArcIndirectCycle:  "cyclic type reference",
	ArcModuleHalted:   "module halted before ARC lowering",
	ArcUnresolvedType: "unresolved type treated as reference-counted",

	ObsInfo:    "observability information",
	ObsTimings: "pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("BND%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("ARC%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
