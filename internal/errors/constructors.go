package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *NewsletterError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *NewsletterError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing: "+field).
		WithContext("field", field)
}

func ConfigInvalid(field, reason string) *NewsletterError {
	return New(CategoryConfig, SeverityFatal, "invalid configuration: "+field+": "+reason).
		WithContext("field", field).
		WithContext("reason", reason)
}

// Provider errors

func ProviderFailed(provider, operation string, cause error) *NewsletterError {
	return WrapRetryable(cause, CategoryProvider, SeverityFatal, provider+" "+operation+" failed").
		WithContext("provider", provider).
		WithContext("operation", operation)
}

// Composition errors

func CompositionFailed(cause error) *NewsletterError {
	return Wrap(cause, CategoryComposition, SeverityFatal, "template composition failed")
}

// Pipeline errors

func StageFailed(stage string, cause error) *NewsletterError {
	return Wrap(cause, CategoryPipeline, SeverityFatal, "stage "+stage+" failed").
		WithContext("stage", stage)
}

// Internal errors

func InternalError(message string, cause error) *NewsletterError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
