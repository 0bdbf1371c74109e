package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Orders() OrderRepository
	ServiceOptions() ServiceOptionRepository
	Partners() PartnerRepository
	Conversions() ConversionRepository
	Payouts() PayoutRepository
}
