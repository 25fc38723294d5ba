package server

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ProtoFile names the descriptor registered for StudyService.
const ProtoFile = "studynote/v1/study.proto"

var (
	structName = "." + string((&structpb.Struct{}).ProtoReflect().Descriptor().FullName())
	bytesName  = "." + string((&wrapperspb.BytesValue{}).ProtoReflect().Descriptor().FullName())
)

var methodTypes = []struct{ name, in, out string }{
	{"NormalizeOCR", structName, structName},
	{"ExtractText", bytesName, structName},
	{"CreateReviewTask", structName, structName},
	{"UpdateReviewTaskStatus", structName, structName},
	{"ListReviewTasks", structName, structName},
	{"ExportReviewTasks", structName, bytesName},
}

// The service has no generated code, so its descriptor is built here and
// registered globally for server reflection (grpcurl describe/invoke).
func init() {
	svc := &descriptorpb.ServiceDescriptorProto{Name: proto.String("StudyService")}
	for _, m := range methodTypes {
		svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(m.name),
			InputType:  proto.String(m.in),
			OutputType: proto.String(m.out),
		})
	}
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(ProtoFile),
		Package: proto.String("studynote.v1"),
		Dependency: []string{
			structpb.File_google_protobuf_struct_proto.Path(),
			wrapperspb.File_google_protobuf_wrappers_proto.Path(),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{svc},
		Syntax:  proto.String("proto3"),
	}
	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		panic("studynote: build descriptor: " + err.Error())
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic("studynote: register descriptor: " + err.Error())
	}
}
