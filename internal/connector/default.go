package connector

// Default returns the permissive connector used when a schema declares no
// datasource: every capability is enabled and any native type parses. It
// exists so that parsing and reformatting work on datasource-less schemas;
// real validation runs against a registered backend connector.
func Default() Connector {
	return defaultConnector{}
}

type defaultConnector struct{}

func (defaultConnector) Name() string { return "default" }

func (defaultConnector) Capabilities() Capabilities {
	return Capabilities{
		SortOrderInIndex:      true,
		SortOrderInPrimaryKey: true,
		IndexLengthPrefix:     true,
		Clustering:            true,
		FulltextIndex:         true,
		CompositeTypes:        true,
		Enums:                 true,
		NamedPrimaryKeys:      true,
		NamedForeignKeys:      true,
		AutoIncrement:         true,
		AutoIncrementNonID:    true,
		AutoIncrementMultiple: true,
	}
}

func (defaultConnector) SupportedReferentialActions() []ReferentialAction {
	return []ReferentialAction{
		ActionCascade,
		ActionRestrict,
		ActionNoAction,
		ActionSetNull,
		ActionSetDefault,
	}
}

func (defaultConnector) MaxIdentifierLength() int { return 128 }

func (defaultConnector) ParseNativeType(name string, args []string) (NativeType, error) {
	return NativeType{Name: name, Args: args}, nil
}

func (defaultConnector) ScalarFor(nt NativeType) (ScalarType, bool) {
	return "", false
}
