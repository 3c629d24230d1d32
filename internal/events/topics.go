package events

// Topic constants for domain events emitted by the back office.
const (
	TopicBundleCreated       = "bundle.created"
	TopicBundleDeleted       = "bundle.deleted"
	TopicTaxRecordsGenerated = "tax.records_generated"
	TopicTaxRecordsPaid      = "tax.records_paid"
)

// Topics returns every topic the bus knows about.
func Topics() []string {
	return []string{
		TopicBundleCreated,
		TopicBundleDeleted,
		TopicTaxRecordsGenerated,
		TopicTaxRecordsPaid,
	}
}
