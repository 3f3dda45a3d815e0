package mock

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCitizen    Role = "Citizen"
	RoleDepartment Role = "Department"
	RoleGuardian   Role = "Guardian"
	RoleSuperUser  Role = "SuperUser"
	RoleTrustee    Role = "Trustee"
)

var roleNumbers = map[Role]int{
	RoleCitizen:    1,
	RoleDepartment: 2,
	RoleGuardian:   3,
	RoleSuperUser:  4,
	RoleTrustee:    5,
}

// ParseRole matches a role name case-insensitively
func ParseRole(s string) (Role, bool) {
	for r := range roleNumbers {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

// CanManage reports whether the role may register users and edit templates
func (r Role) CanManage() bool {
	return r == RoleGuardian || r == RoleDepartment || r == RoleSuperUser
}

type Department struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type User struct {
	ID           int64  `yaml:"id"`
	Username     string `yaml:"username"`
	ScreenName   string `yaml:"screenName"`
	Password     string `yaml:"password"`
	Role         Role   `yaml:"role"`
	DepartmentID int64  `yaml:"departmentId"`
}

type Activity struct {
	ID        int64  `yaml:"id"`
	Pictogram int64  `yaml:"pictogram"`
	Order     int    `yaml:"order"`
	State     string `yaml:"state"`
}

type Day struct {
	Day        Weekday    `yaml:"day"`
	Activities []Activity `yaml:"activities"`
}

type Template struct {
	ID           int64  `yaml:"id"`
	Name         string `yaml:"name"`
	DepartmentID int64  `yaml:"departmentId"`
	Thumbnail    int64  `yaml:"thumbnail"`
	Days         []Day  `yaml:"days"`
}

// Store is the fake API's in-memory state
type Store struct {
	mu           sync.Mutex
	seed         *Seed
	departments  map[int64]*Department
	users        map[int64]*User
	tokens       map[string]int64
	templates    map[int64]*Template
	nextUserID   int64
	nextTemplate int64
	nextActivity int64
}

func NewStore(seed *Seed) *Store {
	s := &Store{seed: seed}
	s.Reset()
	return s
}

// Reset drops every change and issued token and reloads the seed
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.departments = make(map[int64]*Department)
	s.users = make(map[int64]*User)
	s.tokens = make(map[string]int64)
	s.templates = make(map[int64]*Template)
	s.nextUserID, s.nextTemplate, s.nextActivity = 0, 0, 0

	for _, d := range s.seed.Departments {
		s.departments[d.ID] = &d
	}
	for _, u := range s.seed.Users {
		s.users[u.ID] = &u
		s.nextUserID = max(s.nextUserID, u.ID)
	}
	for _, t := range s.seed.Templates {
		tpl := cloneTemplate(&t)
		for di := range tpl.Days {
			for ai := range tpl.Days[di].Activities {
				s.nextActivity++
				tpl.Days[di].Activities[ai].ID = s.nextActivity
			}
		}
		s.templates[tpl.ID] = tpl
		s.nextTemplate = max(s.nextTemplate, tpl.ID)
	}
}

func (s *Store) Login(username, password string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username && u.Password == password {
			token := uuid.NewString()
			s.tokens[token] = u.ID
			return token, true
		}
	}
	return "", false
}

// Authenticate returns the user a bearer token was issued to
func (s *Store) Authenticate(token string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

func (s *Store) User(id int64) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

func (s *Store) Department(id int64) (*Department, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.departments[id]
	return d, ok
}

// AddUser stores u with a new id. It fails when the username is taken.
func (s *Store) AddUser(u User) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return nil, false
		}
	}
	s.nextUserID++
	u.ID = s.nextUserID
	if u.ScreenName == "" {
		u.ScreenName = u.Username
	}
	s.users[u.ID] = &u
	cp := u
	return &cp, true
}

// Templates returns a department's templates ordered by id
func (s *Store) Templates(departmentID int64) []*Template {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Template
	for _, t := range s.templates {
		if t.DepartmentID == departmentID {
			out = append(out, cloneTemplate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Template(id int64) (*Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, false
	}
	return cloneTemplate(t), true
}

// PutTemplate inserts t when its id is zero, otherwise replaces the stored template
func (s *Store) PutTemplate(t *Template) *Template {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl := cloneTemplate(t)
	if tpl.ID == 0 {
		s.nextTemplate++
		tpl.ID = s.nextTemplate
	}
	sort.SliceStable(tpl.Days, func(i, j int) bool { return tpl.Days[i].Day < tpl.Days[j].Day })
	for di := range tpl.Days {
		for ai := range tpl.Days[di].Activities {
			s.nextActivity++
			tpl.Days[di].Activities[ai].ID = s.nextActivity
		}
	}
	s.templates[tpl.ID] = tpl
	return cloneTemplate(tpl)
}

func (s *Store) DeleteTemplate(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return false
	}
	delete(s.templates, id)
	return true
}

func cloneTemplate(t *Template) *Template {
	cp := *t
	cp.Days = make([]Day, len(t.Days))
	for i, d := range t.Days {
		cp.Days[i] = Day{Day: d.Day, Activities: append([]Activity(nil), d.Activities...)}
	}
	return &cp
}
