package analysis

import "nac_patrimony_crawler/internal/model"

// Classify 按固定优先级得出记录状态：
// 无负责人 > 负责人即用户 > 共同负责人即用户 > 未关联
// 比较为精确字符串相等；用户缺失（Sentinel）时不参与匹配
func Classify(user, owner, coOwner string) model.Status {
	switch {
	case owner == model.Sentinel:
		return model.StatusNoOwnership
	case user == model.Sentinel:
		return model.StatusNotLinked
	case owner == user:
		return model.StatusOwnerIsUser
	case coOwner == user:
		return model.StatusCoOwnerIsUser
	default:
		return model.StatusNotLinked
	}
}

// NewRecord 由抽取字段生成一条报告记录
func NewRecord(id model.Identifier, f model.Fields) model.DetailRecord {
	return model.DetailRecord{
		Identifier:   id,
		AssetID:      f.AssetID,
		User:         f.User,
		PrimaryOwner: f.Owner,
		CoOwner:      f.CoOwner,
		Status:       Classify(f.User, f.Owner, f.CoOwner),
	}
}

// FailedRecord 生成详情页加载失败时的记录
func FailedRecord(id model.Identifier) model.DetailRecord {
	return model.DetailRecord{
		Identifier:   id,
		AssetID:      model.Sentinel,
		User:         model.Sentinel,
		PrimaryOwner: model.Sentinel,
		CoOwner:      model.Sentinel,
		Status:       model.StatusLoadFailed,
	}
}
