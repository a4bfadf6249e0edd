package compliance

// Catalog holds the static rule and knowledge-base tables the pipeline
// evaluates. It is built once at process start and treated as read-only,
// which makes it safe for unsynchronized concurrent reads.
type Catalog struct {
	Documents      []Document
	ViolationRules []CriticalViolationRule
	Patterns       []AutoCompliancePattern
}

// DefaultCatalog returns the built-in catalog. In production the document
// set would come from a versioned knowledge base; the rule tables are part
// of the engine itself.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Documents:      knowledgeBase,
		ViolationRules: criticalViolationRules,
		Patterns:       autoCompliancePatterns,
	}
}

var knowledgeBase = []Document{
	{
		ID:        "GDPR-001",
		Framework: "GDPR",
		Title:     "Personal Data Collection Consent",
		Content:   "Systems must obtain explicit consent before collecting personal data. Users must be informed of data usage and retention policies.",
		Severity:  SeverityHigh,
		Source:    "GDPR Article 6(1)(a)",
	},
	{
		ID:        "HIPAA-001",
		Framework: "HIPAA",
		Title:     "Protected Health Information Security",
		Content:   "Healthcare applications must implement encryption for PHI at rest and in transit. Access controls must be role-based.",
		Severity:  SeverityHigh,
		Source:    "HIPAA Security Rule 164.312",
	},
	{
		ID:        "SOC2-001",
		Framework: "SOC 2",
		Title:     "Access Control Management",
		Content:   "Systems must implement multi-factor authentication for privileged accounts and maintain audit logs.",
		Severity:  SeverityMedium,
		Source:    "SOC 2 CC6.1",
	},
	{
		ID:        "PCI-DSS-001",
		Framework: "PCI DSS",
		Title:     "Payment Card Data Storage",
		Content:   "Never store full magnetic stripe, card validation code, or PIN data. Encrypt cardholder data at rest.",
		Severity:  SeverityHigh,
		Source:    "PCI DSS Requirement 3.2",
	},
	{
		ID:        "OWASP-001",
		Framework: "OWASP",
		Title:     "SQL Injection Prevention",
		Content:   "Use parameterized queries or prepared statements. Never concatenate user input into SQL queries.",
		Severity:  SeverityHigh,
		Source:    "OWASP Top 10 A03:2021",
	},
	{
		ID:        "ISO27001-001",
		Framework: "ISO 27001",
		Title:     "Password Policy",
		Content:   "Implement minimum password length of 12 characters, complexity requirements, and password history.",
		Severity:  SeverityMedium,
		Source:    "ISO/IEC 27001:2013 A.9.4.3",
	},
	{
		ID:        "NIST-001",
		Framework: "NIST",
		Title:     "Logging and Monitoring",
		Content:   "Systems should log security events, authentication attempts, and data access with timestamps.",
		Severity:  SeverityLow,
		Source:    "NIST SP 800-53 AU-2",
	},
	{
		ID:        "WCAG-001",
		Framework: "WCAG",
		Title:     "Web Accessibility",
		Content:   "Applications should be perceivable, operable, understandable, and robust for users with disabilities.",
		Severity:  SeverityLow,
		Source:    "WCAG 2.1 Level AA",
	},
}

var criticalViolationRules = []CriticalViolationRule{
	{
		Keywords:  []string{"credit card", "email", "send", "transmit"},
		MatchAll:  true,
		Predicate: PredicateCardOverEmail,
		Violation: Violation{
			Code:        "PCI-DSS-BLOCK-001",
			Framework:   "PCI DSS",
			Title:       "Credit Card Data via Email - PROHIBITED",
			Description: "Your project description mentions sending credit card information through email. This is a CRITICAL PCI DSS violation and is never acceptable under any circumstances.",
			Severity:    SeverityHigh,
			Source:      "PCI DSS Requirement 4.2",
			Coaching:    "Email is NOT a secure channel for transmitting payment card data. It lacks encryption, authentication, and audit trails required by PCI DSS. This practice exposes customers to fraud and your business to massive fines and liability.",
			RequiredActions: []string{
				"Remove any email transmission of credit card data immediately",
				"Use a PCI DSS compliant payment processor (Stripe, Square, PayPal, etc.)",
				"Implement tokenization - never store or transmit full card numbers",
				"Use TLS 1.2+ encrypted connections for all payment processing",
				"Consult with a PCI DSS qualified security assessor (QSA)",
			},
			BlockGeneration: true,
		},
	},
	{
		Keywords:  []string{"collect", "store", "process"},
		MatchAll:  false,
		Predicate: PredicateUnprotectedHealthData,
		Violation: Violation{
			Code:        "HIPAA-BLOCK-001",
			Framework:   "HIPAA",
			Title:       "Health Information Handling - HIPAA Compliance Required",
			Description: "Your project involves collecting or processing health information without mentioning HIPAA compliance measures. This requires extensive security infrastructure.",
			Severity:    SeverityHigh,
			Source:      "HIPAA Privacy Rule 45 CFR Part 160",
			Coaching:    "Health information (PHI/ePHI) requires HIPAA-compliant infrastructure. Before proceeding, ensure you have: end-to-end encryption, access controls, audit logging, business associate agreements, and breach notification procedures. HIPAA violations can result in fines up to $1.5M per violation category per year.",
			RequiredActions: []string{
				"Implement end-to-end encryption for all health data (AES-256)",
				"Establish role-based access controls with audit logging",
				"Create Business Associate Agreements (BAAs) with all vendors",
				"Implement breach detection and notification procedures",
				"Conduct regular HIPAA security risk assessments",
				"Consult with a HIPAA compliance attorney before proceeding",
			},
			BlockGeneration: true,
		},
	},
	{
		Keywords: []string{"medical", "diagnos", "prescri", "treatment", "health advice"},
		MatchAll: false,
		Violation: Violation{
			Code:        "FDA-BLOCK-001",
			Framework:   "FDA/Medical",
			Title:       "Medical Recommendations - FDA Regulation Required",
			Description: "Providing medical advice, diagnoses, or treatment recommendations may require FDA approval and medical licensing. This is a highly regulated area with serious legal implications.",
			Severity:    SeverityHigh,
			Source:      "FDA 21 CFR Part 11, State Medical Practice Acts",
			Coaching:    "Software that provides medical diagnoses, treatment recommendations, or drug prescriptions is regulated as a medical device by the FDA. Operating without proper approval can result in criminal charges, injunctions, and civil penalties.",
			RequiredActions: []string{
				"Clearly disclaim that your service is NOT medical advice",
				"Require users to consult licensed healthcare providers",
				"Do not make health claims that require FDA substantiation",
				"Consult with healthcare regulatory attorneys",
				"Consider whether your software qualifies as a medical device under FDA guidelines",
				"If providing supplement recommendations, ensure FDA/FTC compliance for health claims",
			},
			// Warning only: allowed to proceed with a disclaimer.
			BlockGeneration: false,
		},
	},
}

var autoCompliancePatterns = []AutoCompliancePattern{
	{
		Keywords: []string{
			"authentication", "login", "signup", "sign up", "user account",
			"register", "employee", "staff", "admin", "access control",
		},
		Requirements: []RequirementBundle{
			{
				Type:  "authentication",
				Title: "Secure Authentication System",
				Specs: []string{
					"Password hashing with bcrypt (min cost factor 12)",
					"Session management with HTTP-only cookies",
					"CSRF protection tokens",
					"Rate limiting on login attempts (max 5 per 15 minutes)",
					"Password complexity requirements (min 12 characters)",
					"Multi-factor authentication option",
					"Account lockout after failed attempts",
					"Secure password reset flow with time-limited tokens",
				},
				Frameworks: []string{"OWASP", "SOC 2"},
			},
		},
	},
	{
		Keywords: []string{
			"stripe", "payment", "billing", "subscription", "checkout",
			"purchase", "credit card", "card", "transaction", "charge",
			"invoice", "register", "pos", "point of sale",
		},
		Requirements: []RequirementBundle{
			{
				Type:  "payments",
				Title: "PCI DSS Compliant Payment Processing",
				Specs: []string{
					"Stripe or similar PCI DSS Level 1 certified payment processor integration",
					"Never store full credit card numbers on servers",
					"Use secure payment tokenization (Stripe Elements, PayPal SDK, etc.)",
					"Implement webhook verification for payment events",
					"SSL/TLS encryption for all payment pages and API calls",
					"PCI DSS compliance via certified payment processor",
					"Secure storage of customer IDs and payment method tokens only",
					"Audit logging for all payment transactions",
					"Do NOT store CVV, magnetic stripe data, or PIN data after authorization",
				},
				Frameworks: []string{"PCI DSS", "Payment Security"},
			},
		},
	},
	{
		Keywords: []string{
			"user data", "personal data", "email", "profile", "users table",
			"user_id", "registration", "collect", "customer", "employee",
			"contact", "address", "phone", "name",
		},
		Requirements: []RequirementBundle{
			{
				Type:  "gdpr_consent",
				Title: "GDPR Consent & Data Protection",
				Specs: []string{
					"Consent checkbox (unticked by default) on registration/signup forms with clear opt-in language",
					"Privacy policy page with detailed data usage disclosure",
					"Cookie consent banner with granular accept/reject options",
					"Terms of service with data processing agreement",
					"Consent tracking: Store consent timestamp, version, and IP in database",
					"Right to access: API endpoint for users to download all their data (JSON format)",
					"Right to deletion: Delete account functionality removing all personal data",
					"Right to rectification: User profile editing for all personal information",
					"Data portability: Export user data in machine-readable format",
					"Data retention policy: Auto-delete inactive accounts after 3 years with notification",
					"Breach notification procedures: Alert users within 72 hours of data breach",
					"Data processing records: Audit log of all data access and modifications",
					"Third-party vendor compliance: Ensure all integrations are GDPR compliant",
					"Data minimization: Only collect data absolutely necessary for service",
				},
				Frameworks: []string{"GDPR", "CCPA"},
			},
		},
	},
	{
		Keywords: []string{"encrypted", "_enc", "varbinary", "pii", "personal", "sensitive", "ssn", "social security"},
		Requirements: []RequirementBundle{
			{
				Type:  "data_encryption",
				Title: "Data Encryption & Security",
				Specs: []string{
					"AES-256 encryption for all PII data at rest",
					"Encryption key management using environment variables (not in code)",
					"Key rotation policy every 90 days",
					"TLS 1.3 for all data in transit",
					"Encrypted database backups",
					"Secure key storage using secrets manager (AWS KMS, Azure Key Vault, etc.)",
					"Column-level encryption for sensitive fields (email, SSN, financial data)",
					"Encrypted session tokens with HTTP-only and Secure flags",
				},
				Frameworks: []string{"GDPR", "HIPAA", "SOC 2"},
			},
		},
	},
	{
		Keywords: []string{"mfa", "financial", "admin", "manager", "privileged", "supervisor"},
		Requirements: []RequirementBundle{
			{
				Type:  "mfa_security",
				Title: "Multi-Factor Authentication",
				Specs: []string{
					"TOTP-based MFA (Google Authenticator, Authy compatible)",
					"Backup codes generation (10 one-time use codes)",
					"SMS fallback option for account recovery",
					"Mandatory MFA for admin/privileged accounts",
					"Optional MFA for regular users with strong encouragement",
					"MFA required for financial transactions above threshold ($500+)",
					"MFA setup wizard on first login for sensitive roles",
					"Recovery email verification before MFA bypass",
				},
				Frameworks: []string{"SOC 2", "NIST", "PCI DSS"},
			},
		},
	},
	{
		Keywords: []string{"tax", "1099", "vat", "irs", "tax_id", "ein", "financial reporting", "w-9", "w9"},
		Requirements: []RequirementBundle{
			{
				Type:  "tax_compliance",
				Title: "Tax & Financial Reporting Compliance",
				Specs: []string{
					"Encrypted storage of Tax IDs (EIN/SSN) with field-level encryption",
					"1099 form generation for contractors earning $600+",
					"VAT/GST calculation and reporting for international transactions",
					"Tax jurisdiction detection based on user location",
					"Quarterly tax report generation",
					"Audit trail for all financial transactions",
					"W-9 form collection and storage",
					"Automated tax filing integration (optional via TaxJar/Avalara)",
					"Compliance with IRS e-file requirements",
				},
				Frameworks: []string{"IRS Regulations", "International Tax Law"},
			},
		},
	},
	{
		Keywords: []string{
			"database", "postgres", "mysql", "mongodb", "sql", "crud", "query",
			"insert", "update", "delete", "select", "inventory", "store",
		},
		Requirements: []RequirementBundle{
			{
				Type:  "database_security",
				Title: "Database Security & SQL Injection Prevention",
				Specs: []string{
					"Parameterized queries (prepared statements) - NEVER concatenate user input into SQL",
					"Use ORM with built-in SQL injection protection (Prisma, Sequelize, TypeORM)",
					"Database connection pooling with limits",
					"Encrypted connections to database (SSL/TLS)",
					"Row-level security policies where applicable",
					"Regular automated backups with encryption",
					"Database access audit logging",
					"Principle of least privilege for DB users",
					"Encryption at rest for sensitive columns",
					"Input validation and sanitization before database operations",
				},
				Frameworks: []string{"OWASP", "SOC 2"},
			},
		},
	},
	{
		Keywords: []string{"api", "endpoint", "rest", "graphql", "webhook", "integration"},
		Requirements: []RequirementBundle{
			{
				Type:  "api_security",
				Title: "API Security Standards",
				Specs: []string{
					"JWT or session-based authentication",
					"Rate limiting per IP/user (e.g., 100 req/min)",
					"Input validation and sanitization",
					"CORS configuration with allowed origins",
					"API versioning strategy",
					"Error handling without exposing internals",
					"Request/response logging for audit",
					"API documentation with security notes",
				},
				Frameworks: []string{"OWASP", "REST Security"},
			},
		},
	},
	{
		Keywords: []string{"file upload", "image upload", "document upload", "attachment", "photo", "scan", "barcode"},
		Requirements: []RequirementBundle{
			{
				Type:  "file_upload",
				Title: "Secure File Upload Handling",
				Specs: []string{
					"File type validation (whitelist allowed extensions)",
					"File size limits (e.g., 10MB max)",
					"Virus/malware scanning on upload",
					"Unique filename generation (prevent overwrites)",
					"Storage in secure location (not web root)",
					"Content-type verification",
					"Image sanitization (strip EXIF data)",
					"Access control for uploaded files",
				},
				Frameworks: []string{"OWASP", "Security Best Practices"},
			},
		},
	},
	{
		Keywords: []string{"employee", "staff", "worker", "contractor", "hr", "payroll", "time clock", "schedule", "shift"},
		Requirements: []RequirementBundle{
			{
				Type:  "employee_data",
				Title: "Employee Data Protection & Labor Compliance",
				Specs: []string{
					"Encrypted storage of employee PII (SSN, address, contact info)",
					"Role-based access control for HR data",
					"Time tracking audit logs (cannot be modified without admin approval)",
					"Labor law compliance (FLSA overtime rules, break requirements)",
					"Employee data retention policy (7 years for tax/legal purposes)",
					"Access controls limiting who can view salary/compensation data",
					"Employee consent for data collection and processing",
					"Secure onboarding/offboarding procedures",
				},
				Frameworks: []string{"GDPR", "FLSA", "Labor Law"},
			},
		},
	},
}
