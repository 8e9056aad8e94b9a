package app

import (
	"github.com/vk/icebridge/internal/registry"
	"github.com/vk/icebridge/modules/awsiam"
	"github.com/vk/icebridge/modules/awss3"
	"github.com/vk/icebridge/modules/snowflake"
)

// coreModules is the definitive list of all provider modules that are
// compiled into the icebridge binary.
var coreModules = []registry.Module{
	&awss3.Module{},
	&awsiam.Module{},
	&snowflake.Module{},
}
