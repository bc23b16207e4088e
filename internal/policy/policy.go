// Package policy 是 API 的授权表：每个操作需要的角色。
// 资源归属（只能改自己的课程等）由 service 层判断。
package policy

import (
	"fmt"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/domain"
)

type Operation uint8

const (
	Login Operation = iota + 1
	Register

	ListCourses
	GetCourse
	SearchCourses

	CreateCourse
	UpdateCourse
	DeleteCourse
	ArchiveCourse
	ListCoursesByInstructor
	ListOwnCourses

	Enroll
	Unenroll
	EnrollmentStatus
	ListAvailableCourses
	ListMyCourses
	ListEnrolledCourses

	ListAllCourses
	ListInstructors
	CreateInstructor
	ToggleInstructor
	DeleteInstructor
	ListStudents

	GetProfile

	opEnd // 哨兵，勿用
)

// Rule Public 为 true 时无需登录；Roles 为空表示任意已登录用户
type Rule struct {
	Name   string
	Public bool
	Roles  []domain.Role
}

var (
	admin      = []domain.Role{domain.RoleAdmin}
	instructor = []domain.Role{domain.RoleInstructor}
	student    = []domain.Role{domain.RoleUser}
)

var rules = map[Operation]Rule{
	Login:    {Name: "Login", Public: true},
	Register: {Name: "Register", Public: true},

	ListCourses:   {Name: "ListCourses", Public: true},
	GetCourse:     {Name: "GetCourse", Public: true},
	SearchCourses: {Name: "SearchCourses", Public: true},

	CreateCourse:            {Name: "CreateCourse", Roles: instructor},
	UpdateCourse:            {Name: "UpdateCourse", Roles: instructor},
	DeleteCourse:            {Name: "DeleteCourse", Roles: instructor},
	ArchiveCourse:           {Name: "ArchiveCourse", Roles: instructor},
	ListCoursesByInstructor: {Name: "ListCoursesByInstructor", Roles: instructor},
	ListOwnCourses:          {Name: "ListOwnCourses", Roles: instructor},

	Enroll:               {Name: "Enroll", Roles: student},
	Unenroll:             {Name: "Unenroll", Roles: student},
	EnrollmentStatus:     {Name: "EnrollmentStatus", Roles: student},
	ListAvailableCourses: {Name: "ListAvailableCourses", Roles: student},
	ListMyCourses:        {Name: "ListMyCourses", Roles: student},
	ListEnrolledCourses:  {Name: "ListEnrolledCourses", Roles: student},

	ListAllCourses:   {Name: "ListAllCourses", Roles: admin},
	ListInstructors:  {Name: "ListInstructors", Roles: admin},
	CreateInstructor: {Name: "CreateInstructor", Roles: admin},
	ToggleInstructor: {Name: "ToggleInstructor", Roles: admin},
	DeleteInstructor: {Name: "DeleteInstructor", Roles: admin},
	ListStudents:     {Name: "ListStudents", Roles: admin},

	GetProfile: {Name: "GetProfile"},
}

// Operations 全部操作，按声明顺序
func Operations() []Operation {
	ops := make([]Operation, 0, int(opEnd)-1)
	for op := Operation(1); op < opEnd; op++ {
		ops = append(ops, op)
	}
	return ops
}

func RuleFor(op Operation) (Rule, bool) {
	r, ok := rules[op]
	return r, ok
}

func (op Operation) String() string {
	if r, ok := rules[op]; ok {
		return r.Name
	}
	return fmt.Sprintf("Operation(%d)", uint8(op))
}

// Allows 只看角色，不看登录态
func (r Rule) Allows(role domain.Role) bool {
	if len(r.Roles) == 0 {
		return role.Valid()
	}
	for _, want := range r.Roles {
		if want == role {
			return true
		}
	}
	return false
}

// Authorize id 为 nil 表示请求未携带有效 token
func Authorize(id *auth.Identity, op Operation) error {
	r, ok := rules[op]
	if !ok {
		// 未登记的操作一律拒绝
		return domain.Forbidden(fmt.Sprintf("operation %s is not allowed", op))
	}
	if r.Public {
		return nil
	}
	if id == nil {
		return domain.ErrUnauthenticated
	}
	if !r.Allows(id.Role) {
		return domain.Forbidden(fmt.Sprintf("role %s may not perform %s", id.Role, r.Name))
	}
	return nil
}
