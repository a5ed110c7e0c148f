package android

import (
	"fmt"
	"strings"
)

// Component identifies an Android service by package and class.
type Component struct {
	Package string `json:"package"`
	Class   string `json:"class"`
}

// ParseComponent translates a service id into a component. Accepted forms:
//
//	com.example.app/com.example.app.MyService
//	com.example.app/.MyService
//	com.example.app.MyService   (package taken from defaultPackage)
//	.MyService                  (relative to defaultPackage)
func ParseComponent(serviceID, defaultPackage string) (Component, error) {
	id := strings.TrimSpace(serviceID)
	pkg, cls, hasPkg := strings.Cut(id, "/")
	if !hasPkg {
		pkg, cls = defaultPackage, id
	}
	if pkg == "" {
		return Component{}, fmt.Errorf("service id %q has no package and no default package is configured", serviceID)
	}
	if cls == "" || cls == "." {
		return Component{}, fmt.Errorf("service id %q has no class", serviceID)
	}
	if strings.HasPrefix(cls, ".") {
		cls = pkg + cls
	}
	return Component{Package: pkg, Class: cls}, nil
}

// FlattenToString returns "package/class".
func (c Component) FlattenToString() string { return c.Package + "/" + c.Class }

// ShortString abbreviates the class when it lives inside the package.
func (c Component) ShortString() string {
	if rest, ok := strings.CutPrefix(c.Class, c.Package+"."); ok {
		return c.Package + "/." + rest
	}
	return c.FlattenToString()
}

// SimpleName returns the class name without package or outer classes.
func (c Component) SimpleName() string {
	name := c.Class
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func (c Component) String() string { return c.FlattenToString() }
