package auth

import "github.com/alagappainfotech/student-registration-app/internal/app/models"

// RoleSources is everything role resolution looks at for one user.
type RoleSources struct {
	FacultyLinked bool         // a faculty record references the user
	StudentLinked bool         // a student record references the user
	ProfileRole   *models.Role // role stored on the existing profile, if any
	IsStaff       bool
	IsSuperuser   bool
}

// ResolveRole picks the effective role. Priority is fixed: faculty link,
// student link, stored profile role (unknown values become student), staff
// or superuser flags, then student.
func ResolveRole(src RoleSources) models.Role {
	switch {
	case src.FacultyLinked:
		return models.RoleFaculty
	case src.StudentLinked:
		return models.RoleStudent
	case src.ProfileRole != nil:
		if src.ProfileRole.IsValid() {
			return *src.ProfileRole
		}
		return models.RoleStudent
	case src.IsStaff || src.IsSuperuser:
		return models.RoleAdmin
	}
	return models.RoleStudent
}
