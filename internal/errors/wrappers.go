package errors

import "fmt"

// WrapLoadError wraps a package loading failure for a pattern
func WrapLoadError(pattern string, cause error) *BaseError {
	return Wrap(LoadErrorCode, fmt.Sprintf("failed to load package %q", pattern), cause).
		WithContext("pattern", pattern)
}

// NewEntryNotFoundError reports an entry type missing from its package
func NewEntryNotFoundError(pkgPath, typeName string) *BaseError {
	return Newf(EntryNotFoundErrorCode, "entry type %s not found in package %s", typeName, pkgPath).
		WithContext("package", pkgPath).
		WithContext("type", typeName).
		WithSuggestion("check that the type is declared at package level and exported")
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// WrapRegistrationError wraps a failed registry registration
func WrapRegistrationError(registry, key string, cause error) *BaseError {
	return Wrap(RegistrationErrorCode, fmt.Sprintf("failed to register %s in %s registry", key, registry), cause).
		WithContext("registry", registry).
		WithContext("key", key)
}
