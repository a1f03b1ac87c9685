package core

// TxType is the closed classification of a transaction's primary operation.
// Unrecognized long-form names round-trip through OtherType, never dropping
// information.
type TxType int

const (
	Unknown TxType = iota
	Coinbase
	Utxo
	AutoAuth
	UtxosToAccount
	AccountToUtxos
	AccountToAccount
	AnyAccountsToAccounts
	CreateMasternode
	ResignMasternode
	PoolSwap
	CompositeSwap
	AddPoolLiquidity
	RemovePoolLiquidity
	WithdrawFromVault
	SetOracleData
	DepositToVault
	PaybackLoan
	TakeLoan
	Vault
	ICXCreateOrder
	ICXMakeOffer
	ICXSubmitDFCHTLC
	ICXSubmitEXTHTLC
	ICXClaimDFCHTLC
	ICXCloseOrder
	ICXCloseOffer
	OtherType
)

// longForm and shortCode are the two faces of the bijective codec. They are
// intentionally kept as separate tables (rather than derived from one
// another) because the upstream node software is not itself consistent
// between what it calls a type on the wire (long form, e.g. "PoolSwap") and
// what it persists on disk (short code, e.g. "ps") - the two only agree on
// the handful of sentinel values ("_", "cb").
var longForm = map[string]TxType{
	"_":                     Unknown,
	"cb":                    Coinbase,
	"utxo":                  Utxo,
	"CreateMasternode":      CreateMasternode,
	"ResignMasternode":      ResignMasternode,
	"PoolSwap":              PoolSwap,
	"CompositeSwap":         CompositeSwap,
	"AddPoolLiquidity":      AddPoolLiquidity,
	"RemovePoolLiquidity":   RemovePoolLiquidity,
	"UtxosToAccount":        UtxosToAccount,
	"AccountToUtxos":        AccountToUtxos,
	"AccountToAccount":      AccountToAccount,
	"WithdrawFromVault":     WithdrawFromVault,
	"SetOracleData":         SetOracleData,
	"DepositToVault":        DepositToVault,
	"PaybackLoan":           PaybackLoan,
	"TakeLoan":              TakeLoan,
	"AutoAuth":              AutoAuth,
	"Vault":                 Vault,
	"AnyAccountsToAccounts": AnyAccountsToAccounts,
	"ICXCreateOrder":        ICXCreateOrder,
	"ICXMakeOffer":          ICXMakeOffer,
	"ICXSubmitDFCHTLC":      ICXSubmitDFCHTLC,
	"ICXSubmitEXTHTLC":      ICXSubmitEXTHTLC,
	"ICXClaimDFCHTLC":       ICXClaimDFCHTLC,
	"ICXCloseOrder":         ICXCloseOrder,
	"ICXCloseOffer":         ICXCloseOffer,
}

var shortCodes = map[TxType]string{
	Unknown:               "_",
	Coinbase:              "cb",
	Utxo:                  "u",
	AutoAuth:              "au",
	UtxosToAccount:        "+a",
	AccountToUtxos:        "-a",
	AccountToAccount:      "aa",
	AnyAccountsToAccounts: "ax",
	CreateMasternode:      "+m",
	ResignMasternode:      "-m",
	PoolSwap:              "ps",
	CompositeSwap:         "cs",
	AddPoolLiquidity:      "+p",
	RemovePoolLiquidity:   "-p",
	WithdrawFromVault:     "v-",
	DepositToVault:        "v+",
	PaybackLoan:           "l-",
	TakeLoan:              "l+",
	Vault:                 "vn",
	SetOracleData:         "+o",
	ICXCreateOrder:        "icx-start",
	ICXMakeOffer:          "icx-of",
	ICXSubmitDFCHTLC:      "icx-sdfc",
	ICXSubmitEXTHTLC:      "icx-sbtc",
	ICXClaimDFCHTLC:       "icx-claim",
	ICXCloseOrder:         "icx-endor",
	ICXCloseOffer:         "icx-endof",
}

var shortCodeToType = invert(shortCodes)

func invert(m map[TxType]string) map[string]TxType {
	out := make(map[string]TxType, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// ParseTxTypeLongForm maps the wire-form name carried in vm.txtype to a
// TxType. Unrecognized names become OtherType, retrievable via ShortCode
// (which returns the raw name unchanged, matching the original's passthrough
// behaviour).
func ParseTxTypeLongForm(name string) TxType {
	if tt, ok := longForm[name]; ok {
		return tt
	}
	return OtherType
}

// ParseTxTypeShortCode maps a persisted short code back to a TxType. This is
// the inverse used when re-reading stored rows; it is deliberately not the
// same table as ParseTxTypeLongForm since short codes and long-form names
// only coincide for Unknown and Coinbase.
func ParseTxTypeShortCode(code string) TxType {
	if tt, ok := shortCodeToType[code]; ok {
		return tt
	}
	return OtherType
}

// ShortCode returns the on-disk representation of tt. For OtherType, name is
// stored and returned verbatim, both for long-form passthrough values and as
// the short code under re-parse.
func (tt TxType) ShortCode(name string) string {
	if tt == OtherType {
		return name
	}
	if s, ok := shortCodes[tt]; ok {
		return s
	}
	return name
}

// String returns a human-readable long-form-ish name, used for log output and
// the hop descriptions emitted by gpath/spath (§4.9.1).
func (tt TxType) String() string {
	for name, t := range longForm {
		if t == tt && tt != Unknown {
			return name
		}
	}
	switch tt {
	case Unknown:
		return "_"
	case OtherType:
		return "other"
	default:
		return "unknown"
	}
}

// IsDVM reports whether tt is a type whose vm.msg should be scanned for DVM
// participant addresses - every type except the three UTXO-shaped sentinels.
func IsDVM(tt TxType) bool {
	return tt != Coinbase && tt != Unknown && tt != Utxo
}
