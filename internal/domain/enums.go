package domain

// ProcessingStatus represents the extraction lifecycle of a document.
type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// BenefitType identifies one coverage category a benefit guide can describe.
type BenefitType string

const (
	BenefitRental              BenefitType = "rental"
	BenefitTripProtection      BenefitType = "tripProtection"
	BenefitBaggageProtection   BenefitType = "baggageProtection"
	BenefitPurchaseProtection  BenefitType = "purchaseProtection"
	BenefitExtendedWarranty    BenefitType = "extendedWarranty"
	BenefitCellPhoneProtection BenefitType = "cellPhoneProtection"
	BenefitRoadsideAssistance  BenefitType = "roadsideAssistance"
	BenefitEmergencyAssistance BenefitType = "emergencyAssistance"
	BenefitReturnProtection    BenefitType = "returnProtection"
	BenefitTravelPerks         BenefitType = "travelPerks"
)

// BenefitTypes lists every benefit category in prompt order.
var BenefitTypes = []BenefitType{
	BenefitRental,
	BenefitTripProtection,
	BenefitBaggageProtection,
	BenefitPurchaseProtection,
	BenefitExtendedWarranty,
	BenefitCellPhoneProtection,
	BenefitRoadsideAssistance,
	BenefitEmergencyAssistance,
	BenefitReturnProtection,
	BenefitTravelPerks,
}

var validBenefitTypes = func() map[BenefitType]bool {
	m := make(map[BenefitType]bool, len(BenefitTypes))
	for _, t := range BenefitTypes {
		m[t] = true
	}
	return m
}()

// IsValid reports whether t is one of the fixed benefit categories.
func (t BenefitType) IsValid() bool {
	return validBenefitTypes[t]
}

// NewCardSentinel marks a benefit whose card is not yet in the catalog.
const NewCardSentinel = "new"

// AuditAction identifies a recorded pipeline or review event.
type AuditAction string

const (
	AuditExtractionCompleted AuditAction = "extraction.completed"
	AuditDocumentDeleted     AuditAction = "document.deleted"
)

// Audit entity types.
const (
	AuditEntityDocument = "document"
)

// ExportFormat selects the file format of a benefit export.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// AllowedContentTypes lists the MIME types the extraction step can send to a model.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}
