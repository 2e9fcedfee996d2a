package model

// Sentinel 表示"无可用值"，用于资产编号、负责人、共同负责人与用户字段
const Sentinel = "-"

// Identifier 是清单页中一个"使用中"条目对应的主机标识（通常为 IPv4）
type Identifier string

// Status 是记录的状态描述，取值固定
type Status string

const (
	StatusNoOwnership   Status = "No asset-ownership information."
	StatusOwnerIsUser   Status = "The asset owner is the machine's user."
	StatusCoOwnerIsUser Status = "The asset co-owner is the machine's user."
	StatusNotLinked     Status = "The user is not linked to the asset."
	StatusLoadFailed    Status = "Detail page could not be loaded."
)

// Statuses 按报告中的固定顺序列出全部状态
var Statuses = []Status{
	StatusNoOwnership,
	StatusOwnerIsUser,
	StatusCoOwnerIsUser,
	StatusNotLinked,
	StatusLoadFailed,
}

// Fields 是从详情页抽取出的原始字段，缺失字段为 Sentinel
type Fields struct {
	User    string // 机器用户（Nome do Usuário）
	Owner   string // 资产负责人（Responsável）
	CoOwner string // 资产共同负责人（Co-Responsável）
	AssetID string // 资产编号（Patrimônio）
}

// EmptyFields 返回全部为 Sentinel 的字段集合
func EmptyFields() Fields {
	return Fields{User: Sentinel, Owner: Sentinel, CoOwner: Sentinel, AssetID: Sentinel}
}

// DetailRecord 是报告中的一行，创建后不再修改
type DetailRecord struct {
	Identifier   Identifier
	AssetID      string
	User         string
	PrimaryOwner string
	CoOwner      string
	Status       Status
}

// Report 是最终导出的报告：表头 + 有序记录
type Report struct {
	Header  []string
	Records []DetailRecord
}
