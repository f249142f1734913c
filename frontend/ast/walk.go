package ast

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for each node. If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	visit := func(children ...Node) {
		for _, child := range children {
			if child != nil {
				Inspect(child, f)
			}
		}
	}
	switch n := node.(type) {
	case *Unit:
		for _, imp := range n.Imports {
			visit(imp)
		}
		for _, c := range n.Classes {
			visit(c)
		}
		for _, field := range n.Fields {
			visit(field)
		}
		for _, m := range n.Functions {
			visit(m)
		}
	case *ClassDecl:
		for _, tp := range n.TypeParams {
			visit(tp)
		}
		visitTypeRef(n.SuperType, f)
		for _, i := range n.Interfaces {
			visitTypeRef(i, f)
		}
		for _, field := range n.Fields {
			visit(field)
		}
		for _, ctor := range n.Constructors {
			visit(ctor)
		}
		for _, m := range n.Methods {
			visit(m)
		}
	case *TypeParamDecl:
		for _, b := range n.UpperBounds {
			visitTypeRef(b, f)
		}
		visitTypeRef(n.LowerBound, f)
	case *FieldDecl:
		visitTypeRef(n.Type, f)
		visitExpr(n.Init, f)
	case *MethodDecl:
		for _, tp := range n.TypeParams {
			visit(tp)
		}
		for _, p := range n.Params {
			visit(p)
		}
		visitTypeRef(n.Return, f)
		if n.Body != nil {
			visit(n.Body)
		}
	case *ConstructorDecl:
		for _, p := range n.Params {
			visit(p)
		}
		if n.Body != nil {
			visit(n.Body)
		}
	case *ParamDecl:
		visitTypeRef(n.Type, f)
	case *NamedTypeRef:
		for _, arg := range n.Args {
			visitTypeRef(arg, f)
		}
	case *FunctionTypeRef:
		for _, p := range n.Params {
			visitTypeRef(p, f)
		}
		visitTypeRef(n.Return, f)

	case *FieldAccess:
		visitExpr(n.Receiver, f)
	case *MethodCall:
		visitExpr(n.Receiver, f)
		for _, arg := range n.TypeArgs {
			visitTypeRef(arg, f)
		}
		for _, arg := range n.Args {
			visit(arg)
		}
	case *Argument:
		visitExpr(n.Value, f)
	case *ConstructorCall:
		if n.Class != nil {
			visit(n.Class)
		}
		for _, arg := range n.Args {
			visit(arg)
		}
	case *Assignment:
		visitExpr(n.Target, f)
		visitExpr(n.Value, f)
	case *Lambda:
		for _, p := range n.Params {
			visit(p)
		}
		visitExpr(n.Body, f)
	case *Block:
		for _, stmt := range n.Stmts {
			visit(stmt)
		}
	case *If:
		visitExpr(n.Cond, f)
		visitExpr(n.Then, f)
		visitExpr(n.Else, f)
	case *Match:
		visitExpr(n.Subject, f)
		for _, c := range n.Cases {
			visit(c)
		}
	case *Case:
		if n.Pattern != nil {
			visit(n.Pattern)
		}
		visitExpr(n.Guard, f)
		visitExpr(n.Body, f)
	case *Cast:
		visitExpr(n.Value, f)
		visitTypeRef(n.Target, f)
	case *Conversion:
		visitExpr(n.Value, f)

	case *VarDecl:
		visitTypeRef(n.Type, f)
		visitExpr(n.Init, f)
	case *ExprStmt:
		visitExpr(n.Expr, f)
	case *Return:
		visitExpr(n.Value, f)

	case *BindingPattern:
		visitTypeRef(n.Type, f)
	case *LiteralPattern:
		if n.Value != nil {
			visit(n.Value)
		}
	case *TypePattern:
		visitTypeRef(n.Type, f)
	}
}

func visitExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}

func visitTypeRef(t TypeRef, f func(Node) bool) {
	if t != nil {
		Inspect(t, f)
	}
}

// Rewrite replaces every expression in the tree rooted at e, children first,
// by the result of f, and returns the replacement of e itself.
func Rewrite(e Expr, f func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}
	args := func(args []*Argument) {
		for _, arg := range args {
			arg.Value = Rewrite(arg.Value, f)
		}
	}
	switch n := e.(type) {
	case *FieldAccess:
		n.Receiver = Rewrite(n.Receiver, f)
	case *MethodCall:
		n.Receiver = Rewrite(n.Receiver, f)
		args(n.Args)
	case *ConstructorCall:
		args(n.Args)
	case *Assignment:
		n.Target = Rewrite(n.Target, f)
		n.Value = Rewrite(n.Value, f)
	case *Lambda:
		n.Body = Rewrite(n.Body, f)
	case *Block:
		for _, stmt := range n.Stmts {
			switch s := stmt.(type) {
			case *VarDecl:
				s.Init = Rewrite(s.Init, f)
			case *ExprStmt:
				s.Expr = Rewrite(s.Expr, f)
			case *Return:
				s.Value = Rewrite(s.Value, f)
			}
		}
	case *If:
		n.Cond = Rewrite(n.Cond, f)
		n.Then = Rewrite(n.Then, f)
		n.Else = Rewrite(n.Else, f)
	case *Match:
		n.Subject = Rewrite(n.Subject, f)
		for _, c := range n.Cases {
			c.Guard = Rewrite(c.Guard, f)
			c.Body = Rewrite(c.Body, f)
		}
	case *Cast:
		n.Value = Rewrite(n.Value, f)
	case *Conversion:
		n.Value = Rewrite(n.Value, f)
	}
	return f(e)
}
