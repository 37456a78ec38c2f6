// Package services holds the portal's business logic. Controllers call into
// these types and never touch repositories directly.
//
// Services defined in this package:
//   - AuthService: login, token refresh and revocation, password reset
//   - RegistrationService: registration intake, review and account provisioning
//   - DashboardService: role-specific dashboard aggregates
//   - RegistryService: read access to organizations, classes, courses and people
//   - EnrollmentService: enrollments and grade recording
//   - StudentService: admin student management and per-faculty course views
package services
