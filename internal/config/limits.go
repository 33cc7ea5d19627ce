package config

const (
	// MaxProjectNameLength is the maximum length for project names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxProjectNameLength = 255

	// MaxFolderTitleLength is the maximum length for folder titles.
	// Same bound as project names for consistency.
	MaxFolderTitleLength = 255

	// MaxTestCaseTitleLength is the maximum length for test case titles.
	MaxTestCaseTitleLength = 255

	// MaxRunNameLength is the maximum length for test run names.
	MaxRunNameLength = 255

	// MaxTagNameLength keeps tags short enough to render as chips.
	MaxTagNameLength = 64

	// MaxBulkCases bounds one bulk creation request. Larger imports should
	// be split client-side.
	MaxBulkCases = 500

	// MaxAttachmentBytes bounds one evidence upload (20MB).
	MaxAttachmentBytes = 20 << 20
)
