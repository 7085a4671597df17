package engagement

import "fmt"

// Persisted field names used in partial writes.
const (
	fieldStatus                 = "status"
	fieldProgress               = "progressPercentage"
	fieldProjectStartedAt       = "projectStartedAt"
	fieldSMECompletedAt         = "smeCompletedAt"
	fieldSDPConfirmedAt         = "sdpConfirmedAt"
	fieldFundsReleasedAt        = "fundsReleasedAt"
	fieldDeclinedAt             = "declinedAt"
	fieldDeclineReason          = "declineReason"
	fieldDisputedAt             = "disputedAt"
	fieldDisputedBy             = "disputedBy"
	fieldDisputeReason          = "disputeReason"
	fieldDisputeResolvedAt      = "disputeResolvedAt"
	fieldDisputeResolutionNotes = "disputeResolutionNotes"
	fieldPaymentConfirmed       = "paymentConfirmedByAdmin"
	fieldPaymentConfirmedAt     = "paymentConfirmedAt"
	fieldPaymentConfirmedBy     = "paymentConfirmedBy"
	fieldPaymentReference       = "paymentReference"
	fieldUpdatedAt              = "updatedAt"
)

func milestoneField(i int, name string) string {
	return fmt.Sprintf("milestones.%d.%s", i, name)
}

func milestoneSlot(i int) string {
	return fmt.Sprintf("milestones.%d", i)
}

func documentField(i int, name string) string {
	return fmt.Sprintf("documents.%d.%s", i, name)
}

func documentSlot(i int) string {
	return fmt.Sprintf("documents.%d", i)
}
