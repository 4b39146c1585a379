package service

import "errors"

var (
	ErrInvalidSessionKey = errors.New("会话标识无效")
	ErrInvalidEntity     = errors.New("实体引用无效")
	ErrInvalidKind       = errors.New("kind 过长")
	ErrUnknownEntityType = errors.New("未注册的实体类型")
	ErrInvalidDays       = errors.New("回溯天数须在 0-3650 之间")
	ErrInvalidDateRange  = errors.New("日期范围无效")
)
