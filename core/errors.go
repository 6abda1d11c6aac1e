package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 错误分类：
//   - NOT_FOUND：标题不在当前 Catalog 中（对外表现为 "no such item"，不重试）
//   - UNAVAILABLE：编码器底层模型/服务初始化失败（对外表现为 "service unavailable"）
//   - DEGENERATE_INPUT：文档预处理后为空，编码器返回零向量而不是报错
//   - STALE_CACHE：缓存矩阵的行数/维度与当前 Catalog 不一致，需要丢弃并重建
//   - INVALID_INPUT：Catalog 构建时标题为空或重复、top_n 非法等
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "catalog", "encoder", "cache"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is 按 Module + Code 匹配，使 errors.Is(err, ErrItemNotFound) 对带上下文的同类错误成立。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// Wrap 基于 e 的 Module/Code 生成带底层原因的新错误，e 本身不变。
func (e *DomainError) Wrap(err error) *DomainError {
	return &DomainError{
		Module:  e.Module,
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// WithMessage 基于 e 的 Module/Code 生成携带具体消息的新错误。
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{
		Module:  e.Module,
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// GetDomainError 获取错误链中的 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodeNotSupported    = "NOT_SUPPORTED"
	ErrorCodeUnavailable     = "UNAVAILABLE"
	ErrorCodeInvalidInput    = "INVALID_INPUT"
	ErrorCodeDegenerateInput = "DEGENERATE_INPUT"
	ErrorCodeStaleCache      = "STALE_CACHE"
	ErrorCodeInternalError   = "INTERNAL_ERROR"
)

// 模块名称常量
const (
	ModuleCatalog = "catalog"
	ModuleEncoder = "encoder"
	ModuleCache   = "cache"
	ModuleStore   = "store"
	ModuleSource  = "source"
	ModuleService = "service"
)

var (
	// ErrItemNotFound 标题不在 Catalog 中
	ErrItemNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: item not found")

	// ErrInvalidInput 输入不满足前置条件
	ErrInvalidInput = NewDomainError(ModuleCatalog, ErrorCodeInvalidInput, "catalog: invalid input")

	// ErrEncoderUnavailable 编码器依赖的模型/服务不可用
	ErrEncoderUnavailable = NewDomainError(ModuleEncoder, ErrorCodeUnavailable, "encoder: unavailable")

	// ErrDegenerateInput 文档为空或无法解析，只作为零向量的原因记录，不会从编码器返回
	ErrDegenerateInput = NewDomainError(ModuleEncoder, ErrorCodeDegenerateInput, "encoder: degenerate input")

	// ErrEncoderNotFitted 稀疏编码器尚未 fit 时调用 Transform
	ErrEncoderNotFitted = NewDomainError(ModuleEncoder, ErrorCodeNotSupported, "encoder: not fitted")

	// ErrCacheNotFound 缓存文件/键不存在
	ErrCacheNotFound = NewDomainError(ModuleCache, ErrorCodeNotFound, "cache: not found")

	// ErrStaleCache 缓存形状与当前 Catalog 不一致
	ErrStaleCache = NewDomainError(ModuleCache, ErrorCodeStaleCache, "cache: stale matrix")
)

// IsNotFound 检查错误是否为 NOT_FOUND（任意模块）
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsStale 检查错误是否为 STALE_CACHE
func IsStale(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeStaleCache
	}
	return false
}
