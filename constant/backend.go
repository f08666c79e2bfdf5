package constant

const (
	BackendNftables = "nftables"
	BackendIPSet    = "ipset"
	BackendPrinter  = "printer"
)

const (
	DefaultTableKind = "inet"
	DefaultTableName = "filter"
	DefaultQueryType = "AAAA"
)
