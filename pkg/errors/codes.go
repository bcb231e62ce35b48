package errors

// ErrorCode is a string identifier for a specific failure category.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "COMMON_000"

	CodeInternal      ErrorCode = "COMMON_001"
	CodeInvalidParam  ErrorCode = "COMMON_002"
	CodeNotFound      ErrorCode = "COMMON_003"
	CodeValidation    ErrorCode = "COMMON_005"
	CodeSerialization ErrorCode = "COMMON_006"
	CodeUnavailable   ErrorCode = "COMMON_007"
)

// Classification error codes
const (
	CodeClassifierConfigInvalid ErrorCode = "CLS_001"
	CodeProfileRangesOverlap    ErrorCode = "CLS_002"
)

// Pairing error codes.  The geometry engine itself carries no error codes:
// invalid geometry is repaired rather than raised, and a repair that yields
// an empty geometry flows through the filters as zero area.
const (
	CodePairingConfigInvalid ErrorCode = "PAIR_001"
	CodeCompositeIDInvalid   ErrorCode = "PAIR_002"
)

// Catalog error codes
const (
	CodeCatalogMissing     ErrorCode = "CAT_001"
	CodeCatalogEmpty       ErrorCode = "CAT_002"
	CodeCatalogParseFailed ErrorCode = "CAT_003"
	CodeCatalogFieldBad    ErrorCode = "CAT_004"
)

// Object-storage error codes
const (
	CodeStorageUnavailable    ErrorCode = "STO_001"
	CodeStorageObjectMissing  ErrorCode = "STO_002"
	CodeStorageTransferFailed ErrorCode = "STO_003"
)

// Config-generation error codes
const (
	CodeBaseConfigInvalid    ErrorCode = "CFG_001"
	CodeDerivedConfigFailed  ErrorCode = "CFG_002"
	CodeSubMissionIDsMissing ErrorCode = "CFG_003"
)
