package auth

const (
	RoleAdmin    = "ROLE_ADMIN"
	RoleHR       = "ROLE_HR"
	RoleManager  = "ROLE_MANAGER"
	RoleEmployee = "ROLE_EMPLOYEE"
)

type defaultResource struct {
	name   string
	url    string
	method string
	roles  []string
}

// defaultResources is what Seed installs on an empty database. The caller's
// own profile, inbox and conversations only require a valid token.
var defaultResources = []defaultResource{
	{"departments.read", "/api/v1/departments/**", "GET", []string{RoleAdmin, RoleHR, RoleManager, RoleEmployee}},
	{"departments.write", "/api/v1/departments/**", "*", []string{RoleAdmin, RoleHR}},
	{"positions.read", "/api/v1/positions/**", "GET", []string{RoleAdmin, RoleHR, RoleManager, RoleEmployee}},
	{"positions.write", "/api/v1/positions/**", "*", []string{RoleAdmin, RoleHR}},
	{"employees.read", "/api/v1/employees/**", "GET", []string{RoleAdmin, RoleHR, RoleManager}},
	{"employees.write", "/api/v1/employees/**", "*", []string{RoleAdmin, RoleHR}},
	{"payroll.read", "/api/v1/payroll/**", "GET", []string{RoleAdmin, RoleHR}},
	{"payroll.write", "/api/v1/payroll/**", "*", []string{RoleAdmin, RoleHR}},
	{"access.admin", "/api/v1/roles/**", "*", []string{RoleAdmin}},
	{"resources.admin", "/api/v1/resources/**", "*", []string{RoleAdmin}},
	{"users.admin", "/api/v1/users/**", "*", []string{RoleAdmin}},
	{"audit.read", "/api/v1/audit/**", "GET", []string{RoleAdmin}},
	{"reports.read", "/api/v1/reports/**", "GET", []string{RoleAdmin, RoleHR}},
	{"notifications.create", "/api/v1/notifications", "POST", []string{RoleAdmin, RoleHR}},
}

var defaultRoles = map[string]string{
	RoleAdmin:    "System administrator",
	RoleHR:       "HR staff",
	RoleManager:  "Line manager",
	RoleEmployee: "Employee self service",
}
